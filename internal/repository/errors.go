package repository

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrDuplicateSKU      = errors.New("sku already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateKey      = errors.New("duplicate key")
)

// Index names as created by database.EnsureIndexes.
var duplicateByIndex = map[string]error{
	"sku_1":      ErrDuplicateSKU,
	"username_1": ErrDuplicateUsername,
	"email_1":    ErrDuplicateEmail,
}

// The server reports "... collection: db.coll index: <name> dup key: { ... }".
// The first match is the index; the key values come after it.
var dupIndexPattern = regexp.MustCompile(`index: (\S+)`)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// CanonicalID returns the lower-case hex form of id, or ErrInvalidID.
func CanonicalID(id string) (string, error) {
	oid, err := parseID(id)
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

// duplicateKeyError translates a unique index violation into the sentinel for
// the colliding index. Other errors are returned unchanged.
func duplicateKeyError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if sentinel, ok := duplicateByIndex[duplicateIndex(err)]; ok {
		return sentinel
	}
	return ErrDuplicateKey
}

// duplicateIndex extracts the name of the violated index from the server
// messages carried by err.
func duplicateIndex(err error) string {
	var messages []string

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 || e.Code == 12582 {
				messages = append(messages, e.Message)
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			messages = append(messages, e.Message)
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		messages = append(messages, ce.Message)
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}

	for _, msg := range messages {
		if m := dupIndexPattern.FindStringSubmatch(msg); m != nil {
			return m[1]
		}
	}
	return ""
}
