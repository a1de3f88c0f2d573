package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/client/client"
	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

// Restore brings back the session stored by a previous run, if any.
func (a *App) Restore(ctx context.Context) {
	if err := a.manager.RestoreSession(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		fmt.Fprintf(a.out, "Could not restore previous session: %s\n", describeError(err))
	}
}

// Login prompts for email and password and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	profile, err := a.manager.SignIn(ctx, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", describeError(err))
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", profile.Name)
	return nil
}

// Logout signs out. Leftover records are reported but the session is gone
// either way.
func (a *App) Logout(ctx context.Context) error {
	err := a.manager.SignOut(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Logged out")
	case errors.Is(err, common.ErrSignOutIncomplete):
		fmt.Fprintf(a.out, "Logged out, but local data could not be fully removed: %s\n", err)
	default:
		fmt.Fprintf(a.out, "Logout failed: %s\n", describeError(err))
	}
	return err
}

// WhoAmI prints the signed-in profile.
func (a *App) WhoAmI(ctx context.Context) error {
	v := a.manager.Current()
	if !v.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	printProfile(a, v.Profile)
	return nil
}

func printProfile(a *App, p *models.UserProfile) {
	fmt.Fprintf(a.out, "ID:     %s\n", p.ID)
	fmt.Fprintf(a.out, "Name:   %s\n", p.Name)
	fmt.Fprintf(a.out, "Email:  %s\n", p.Email)
	fmt.Fprintf(a.out, "Avatar: %s\n", p.AvatarOrDefault())
}

// describeError turns a session error into a line for the user. Server
// rejections show the server's own message.
func describeError(err error) string {
	var re *client.RemoteError
	switch {
	case errors.Is(err, common.ErrSessionBusy):
		return "another operation is in progress, try again"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "not logged in"
	case errors.Is(err, common.ErrAlreadyAuthenticated):
		return "already logged in, log out first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	case errors.Is(err, common.ErrSessionPersistenceFailed):
		return "could not save the session locally"
	case errors.Is(err, common.ErrAuthenticationFailed):
		return "authentication failed"
	default:
		return err.Error()
	}
}
