// Package common contains shared constants and sentinel errors used across
// gymsession components.
package common

const (
	// AuthorizationHeaderName is the HTTP header / gRPC metadata key that
	// carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "authorization"

	// BearerScheme prefixes the credential in the authorization header.
	BearerScheme = "Bearer"

	// RequestIDHeaderName tags each outbound request for log correlation.
	RequestIDHeaderName = "x-request-id"
)
