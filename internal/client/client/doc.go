// Package client contains the outbound side of the gymsession client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     remote-auth and remote-update endpoints plus a liveness probe.
//  2. Two implementations: HTTPClient (POST /sessions, PUT /users) and
//     GRPCClient (SessionService over a JSON codec).
//  3. The shared Authorization slot. Both transports attach its value to
//     every outbound call; the session manager is its only writer.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors matched with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrMalformedResponse.
// Non-2xx answers carrying a message are returned as *RemoteError, which
// unwraps to the matching sentinel when there is one.
package client
