// Package cli provides the interactive gymsession terminal client.
//
// It wires configuration, the local session database, the outbound API
// client and the SessionManager, then runs a small REPL. On start the
// previous session is restored from disk without contacting the server; a
// background watcher pings the server to show online/offline status and a
// subscription prints every session transition.
//
// Commands:
//   - login    sign in with email and password
//   - logout   sign out and forget the stored session
//   - whoami   show the signed-in profile
//   - profile  edit name, email, avatar or password
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
