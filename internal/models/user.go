package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type Preferences struct {
	Newsletter    bool `json:"newsletter" bson:"newsletter"`
	Notifications bool `json:"notifications" bson:"notifications"`
}

type Profile struct {
	FirstName   string       `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Phone       string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio         string       `json:"bio,omitempty" bson:"bio,omitempty"`
	Address     *Address     `json:"address,omitempty" bson:"address,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty" bson:"preferences,omitempty"`
}

// WithDefaults fills the address country and notification preferences the
// way a new account expects them.
func (p Profile) WithDefaults() Profile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Address == nil {
		p.Address = &Address{}
	}
	if p.Address.Country == "" {
		p.Address.Country = "USA"
	}
	if p.Preferences == nil {
		p.Preferences = &Preferences{Notifications: true}
	}
	return p
}

// User is an account document. The password hash is never serialised to JSON.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         Role               `json:"role" bson:"role"`
	Profile      Profile            `json:"profile" bson:"profile"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	LastLogin    time.Time          `json:"lastLogin" bson:"lastLogin"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) MarshalJSON() ([]byte, error) {
	type document User
	return json.Marshal(struct {
		document
		ID string `json:"id"`
	}{document: document(u), ID: u.ID.Hex()})
}

// RegisterInput is the signup request body.
type RegisterInput struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6,maxbytes=72"`
	Profile  *Profile `json:"profile"`
}

// Normalize trims the identity fields and lower-cases the email.
func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
}

func (in *RegisterInput) Validate() error {
	verr := &ValidationError{}
	validateStruct(in, verr)
	return verr.orNil()
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatch is the update request body. Role and IsActive are honoured only
// for administrators.
type UserPatch struct {
	Username *string  `json:"username" validate:"omitempty,min=3"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Profile  *Profile `json:"profile"`
	Role     *Role    `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool    `json:"isActive"`
}

func (in *UserPatch) Normalize() {
	if in.Username != nil {
		s := strings.TrimSpace(*in.Username)
		in.Username = &s
	}
	if in.Email != nil {
		s := NormalizeEmail(*in.Email)
		in.Email = &s
	}
}

func (in *UserPatch) Validate() error {
	verr := &ValidationError{}
	validateStruct(in, verr)
	return verr.orNil()
}

func (in *UserPatch) IsEmpty() bool {
	return in.Username == nil && in.Email == nil && in.Profile == nil && in.Role == nil && in.IsActive == nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
