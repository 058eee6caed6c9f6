package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// User is the buyer identity referenced by orders, carts and wallets.
type User struct {
	ID    string
	Name  string
	Email string
}

// Repository provides user lookups.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) ([]User, error)
}
