package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	FirstName    string    `bson:"first_name" json:"firstName"`
	LastName     string    `bson:"last_name" json:"lastName"`
	DisplayName  string    `bson:"display_name" json:"displayName"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

type CreateParams struct {
	Email        string
	Username     string
	FirstName    string
	LastName     string
	DisplayName  string
	Role         string
	PasswordHash string
}

// Store is the durable account collaborator. Lookup matches either the
// email or the username against the identifier.
type Store interface {
	Lookup(ctx context.Context, identifier string) (*User, error)
	Create(ctx context.Context, params CreateParams) (*User, error)
}
