package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toAPIUser(u *users.User) *api.User {
	return &api.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// statusFromError maps service errors to gRPC codes. Messages of user-facing
// errors are passed through verbatim.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, users.ErrEmailTaken):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, users.ErrOldPasswordMismatch),
		errors.Is(err, users.ErrOldPasswordRequired),
		errors.Is(err, users.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "user not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SignInResponse, error) {

	user, token, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			s.logger.Error(ctx, "sign in failed", "error", err)
		}
		return nil, statusFromError(err)
	}

	s.logger.Info(ctx, "Signed in", "user_id", user.ID)
	return &api.SignInResponse{User: toAPIUser(user), Token: token}, nil

}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UpdateUserResponse, error) {

	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.users.Update(ctx, userID, users.UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		return nil, statusFromError(err)
	}

	return &api.UpdateUserResponse{User: toAPIUser(user)}, nil

}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}
