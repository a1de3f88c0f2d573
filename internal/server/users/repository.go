package users

import (
	"context"
)

// Repository stores users. Lookups of unknown users return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByLogin(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
}
