// Package api is the wire contract between the client and the backend.
// The same JSON shapes travel over HTTP (POST /sessions, PUT /users) and
// over gRPC (SessionService, JSON codec).
package api

const (
	PathSessions = "/sessions"
	PathUsers    = "/users"
	PathPing     = "/ping"
)

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Password    *string `json:"password,omitempty"`
	OldPassword *string `json:"old_password,omitempty"`
}

type UpdateUserResponse struct {
	User *User `json:"user,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx HTTP answer.
type ErrorResponse struct {
	Message string `json:"message"`
}
