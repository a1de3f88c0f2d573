// Package server wires the dev backend: the user service and the HTTP and
// gRPC front ends that share it.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/logging"
	"github.com/dmitrijs2005/gymsession/internal/server/config"
	"github.com/dmitrijs2005/gymsession/internal/server/httpapi"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gymsession/internal/server/grpc"
)

const secretKeySize = 32

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
}

// NewApp builds the user service and creates the seed account when one
// is configured.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	secretKey := c.SecretKey
	if secretKey == "" {
		var err error
		if secretKey, err = common.MakeRandHexString(secretKeySize); err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		l.Warn(ctx, "No secret key configured, tokens will not survive a restart")
	}

	us := users.NewService(users.NewMemoryRepository(), secretKey, c.TokenValidity)

	app := &App{config: c, logger: l, userService: us}
	if err := app.seed(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *App) seed(ctx context.Context) error {
	if app.config.SeedEmail == "" {
		return nil
	}
	u, err := app.userService.Register(ctx, app.config.SeedName, app.config.SeedEmail, app.config.SeedPassword)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil
		}
		return fmt.Errorf("seed user: %w", err)
	}
	app.logger.Info(ctx, "Seed user created", "id", u.ID, "email", u.Email)
	return nil
}

// Run serves every configured front end until ctx is done or one of them
// fails; a failure stops the others.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	if app.config.GRPCAddr != "" {
		s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.userService)
		g.Go(func() error { return s.Run(ctx) })
	}
	if app.config.HTTPAddr != "" {
		s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.userService)
		g.Go(func() error { return s.Run(ctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}
	return err
}
