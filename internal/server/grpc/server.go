// Package grpc serves SessionService over gRPC with the JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/logging"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
	"google.golang.org/grpc"
)

// UserService is the part of users.Service the handlers need.
type UserService interface {
	SignIn(ctx context.Context, email, password string) (*users.User, string, error)
	Update(ctx context.Context, userID string, in users.UpdateInput) (*users.User, error)
	Authenticate(token string) (string, error)
}

type GRPCServer struct {
	address string
	users   UserService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authorizationInterceptor))
	api.RegisterSessionServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
