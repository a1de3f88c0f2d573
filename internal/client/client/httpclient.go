package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/logging"
)

const maxErrorBody = 4 << 10

// HTTPClient talks to the REST backend. Every request carries the current
// value of the Authorization slot, if any.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	auth    *Authorization
	logger  logging.Logger
}

// NewHTTPClient builds a client for addr ("host:port" or a full URL).
func NewHTTPClient(addr string, timeout time.Duration, auth *Authorization, l logging.Logger) *HTTPClient {
	if auth == nil {
		auth = &Authorization{}
	}
	return &HTTPClient{
		baseURL: normalizeBaseURL(addr),
		http:    &http.Client{Timeout: timeout},
		auth:    auth,
		logger:  l.With("module", "http_client"),
	}
}

func normalizeBaseURL(addr string) string {
	addr = strings.TrimRight(addr, "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return addr
}

func (c *HTTPClient) SetAuthorization(token string) {
	c.auth.Set(token)
}

func (c *HTTPClient) ClearAuthorization() {
	c.auth.Clear()
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	var resp api.SignInResponse
	status, err := c.do(ctx, http.MethodPost, api.PathSessions, &api.SignInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || resp.User == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: sign in response lacks user or token", ErrMalformedResponse)
	}
	return &models.SignInResult{User: userFromAPI(resp.User), Token: models.AuthCredential(resp.Token)}, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error) {
	var echoed api.User
	status, err := c.do(ctx, http.MethodPut, api.PathUsers, patchToAPI(patch), &echoed)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || echoed.ID == "" {
		return nil, nil
	}
	return userFromAPI(&echoed), nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if _, err := c.do(ctx, http.MethodGet, api.PathPing, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// do sends body as JSON and decodes a 2xx answer into out. An empty 2xx
// body leaves out untouched.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if h := c.auth.Header(); h != "" {
		req.Header.Set(common.AuthorizationHeaderName, h)
	}
	requestID := newRequestID()
	if requestID != "" {
		req.Header.Set(common.RequestIDHeaderName, requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "request done", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeRemoteError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp.StatusCode, nil
}

func decodeRemoteError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body api.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(data))
	}
	return newRemoteError(resp.StatusCode, body.Message)
}

func userFromAPI(u *api.User) *models.UserProfile {
	if u == nil {
		return nil
	}
	return &models.UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

func patchToAPI(p *models.ProfilePatch) *api.UpdateUserRequest {
	if p == nil {
		return &api.UpdateUserRequest{}
	}
	return &api.UpdateUserRequest{
		Name:        p.Name,
		Email:       p.Email,
		Avatar:      p.Avatar,
		Password:    p.Password,
		OldPassword: p.OldPassword,
	}
}

// IsRemoteRejection reports whether err is a server answer rather than a
// transport failure.
func IsRemoteRejection(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
