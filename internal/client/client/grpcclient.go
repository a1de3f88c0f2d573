package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type sessionServiceClient interface {
	SignIn(ctx context.Context, in *api.SignInRequest, opts ...grpc.CallOption) (*api.SignInResponse, error)
	UpdateUser(ctx context.Context, in *api.UpdateUserRequest, opts ...grpc.CallOption) (*api.UpdateUserResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      sessionServiceClient
	auth        *Authorization
	logger      logging.Logger
}

// withAuthorization stamps the outgoing metadata with the slot value and a
// request id. An empty slot strips any authorization already present.
func withAuthorization(ctx context.Context, header, requestID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationHeaderName)
	if header != "" {
		md.Set(common.AuthorizationHeaderName, header)
	}
	if requestID != "" {
		md.Set(common.RequestIDHeaderName, requestID)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) authorizationInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	requestID := newRequestID()
	ctx = withAuthorization(ctx, s.auth.Header(), requestID)

	err := invoker(ctx, method, req, reply, cc, opts...)
	s.logger.Debug(ctx, "rpc done", "method", method, "request_id", requestID, "code", status.Code(err).String())
	return err
}

// NewGRPCClient dials endpointURL lazily; the first call establishes the
// connection.
func NewGRPCClient(endpointURL string, timeout time.Duration, auth *Authorization, l logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if auth == nil {
		auth = &Authorization{}
	}
	c := &GRPCClient{
		endpointURL: endpointURL,
		timeout:     timeout,
		auth:        auth,
		logger:      l.With("module", "grpc_client"),
	}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.authorizationInterceptor),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewSessionServiceClient(conn)
	return nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) SetAuthorization(token string) {
	s.auth.Set(token)
}

func (s *GRPCClient) ClearAuthorization() {
	s.auth.Clear()
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp == nil || resp.User == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: sign in response lacks user or token", ErrMalformedResponse)
	}
	return &models.SignInResult{User: userFromAPI(resp.User), Token: models.AuthCredential(resp.Token)}, nil
}

func (s *GRPCClient) UpdateUser(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.UpdateUser(ctx, patchToAPI(patch))
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp == nil || resp.User == nil || resp.User.ID == "" {
		return nil, nil
	}
	return userFromAPI(resp.User), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// mapError turns a gRPC status into the same errors HTTPClient returns.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return newRemoteError(http.StatusUnauthorized, st.Message())
	case codes.PermissionDenied:
		return newRemoteError(http.StatusForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition:
		return newRemoteError(http.StatusBadRequest, st.Message())
	case codes.NotFound:
		return newRemoteError(http.StatusNotFound, st.Message())
	case codes.Internal:
		if isCodecError(st.Message()) {
			return fmt.Errorf("%w: %s", ErrMalformedResponse, st.Message())
		}
		return newRemoteError(http.StatusInternalServerError, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// grpc-go reports undecodable replies as codes.Internal with this prefix.
func isCodecError(msg string) bool {
	return strings.HasPrefix(msg, "grpc: failed to unmarshal")
}
