package client

import (
	"context"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
)

type Client interface {
	// SignIn exchanges credentials for a profile and a bearer token.
	SignIn(ctx context.Context, email, password string) (*models.SignInResult, error)
	// UpdateUser sends a profile patch. The echoed profile may be nil when
	// the server only acknowledges the update.
	UpdateUser(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error)
	Ping(ctx context.Context) error

	SetAuthorization(token string)
	ClearAuthorization()

	Close() error
}
