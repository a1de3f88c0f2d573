package records

import (
	"context"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
)

// Keys of the two session records.
const (
	KeyCredential = "credential"
	KeyProfile    = "profile"
)

// Repository is raw durable key/value storage.
// Get returns (nil, nil) for a missing key; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store persists the session records. Every call is durable on its own
// once it returns nil; there is no transaction spanning both keys.
// All failures are *StorageError.
type Store interface {
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	RemoveProfile(ctx context.Context) error

	SaveCredential(ctx context.Context, c models.AuthCredential) error
	GetCredential(ctx context.Context) (models.AuthCredential, error)
	RemoveCredential(ctx context.Context) error
}
