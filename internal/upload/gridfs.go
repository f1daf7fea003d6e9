package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps images in a GridFS bucket next to the catalogue.
type GridFSStore struct {
	db         *mongo.Database
	bucketName string
}

type gridFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Filename string             `bson:"filename"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

func NewGridFSStore(db *mongo.Database, bucketName string) *GridFSStore {
	return &GridFSStore{db: db, bucketName: bucketName}
}

// bucket returns a handle bound to the deadline of ctx. Buckets keep their
// deadlines as state, so each operation gets its own.
func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStore) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	if err := ValidName(name); err != nil {
		return err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := b.UploadFromStream(name, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *GridFSStore) find(ctx context.Context, b *gridfs.Bucket, name string) (*gridFile, error) {
	cursor, err := b.FindContext(ctx, bson.M{"filename": name}, options.GridFSFind().SetLimit(1))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, ErrImageNotFound
	}
	var file gridFile
	if err := cursor.Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *GridFSStore) Open(ctx context.Context, name string) (*Object, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	file, err := s.find(ctx, b, name)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStream(file.ID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	contentType := file.Metadata.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Object{ReadCloser: stream, ContentType: contentType, Size: file.Length}, nil
}

func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	file, err := s.find(ctx, b, name)
	if err != nil {
		return err
	}
	if err := b.DeleteContext(ctx, file.ID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	return nil
}
