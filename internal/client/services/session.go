package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/client/repositories/records"
	"github.com/dmitrijs2005/gymsession/internal/client/session"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/logging"
)

// RemoteAuth is the part of the outbound client the session flows call.
type RemoteAuth interface {
	SignIn(ctx context.Context, email, password string) (*models.SignInResult, error)
	UpdateUser(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error)
}

// SessionManager defines the session operations for the CLI.
//
// Contract:
//   - Only one of SignIn, RestoreSession, SignOut and UpdateProfile runs at a
//     time; a concurrent call fails fast with common.ErrSessionBusy.
//   - When Current reports Authenticated, both session records are stored
//     and the outbound client carries the credential.
//   - Any failure that leaves the session undecidable resolves to
//     Unauthenticated.
type SessionManager interface {
	SignIn(ctx context.Context, email, password string) (*models.UserProfile, error)
	RestoreSession(ctx context.Context) error
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error)

	Current() session.View
	Subscribe() (<-chan session.View, func())
}

type sessionManager struct {
	machine *session.Machine
	store   records.Store
	remote  RemoteAuth
	logger  logging.Logger
}

// NewSessionManager wires the flows to their collaborators. machine must be
// built with the same outbound client as its Armer.
func NewSessionManager(machine *session.Machine, store records.Store, remote RemoteAuth, l logging.Logger) SessionManager {
	return &sessionManager{
		machine: machine,
		store:   store,
		remote:  remote,
		logger:  l.With("module", "session_manager"),
	}
}

func (s *sessionManager) Current() session.View {
	return s.machine.Current()
}

func (s *sessionManager) Subscribe() (<-chan session.View, func()) {
	return s.machine.Subscribe()
}

// SignIn authenticates remotely, persists profile then credential and
// commits the session. It is rejected with common.ErrAlreadyAuthenticated
// while a session is live; sign out first.
func (s *sessionManager) SignIn(ctx context.Context, email, password string) (*models.UserProfile, error) {
	release, err := s.machine.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if s.machine.Current().IsAuthenticated() {
		return nil, common.ErrAlreadyAuthenticated
	}

	res, err := s.remote.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn(ctx, "remote sign in failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrAuthenticationFailed, err)
	}
	if res == nil || res.User.IsEmpty() || res.Token.IsEmpty() {
		return nil, fmt.Errorf("%w: response lacks user or token", common.ErrAuthenticationFailed)
	}

	// A credential left behind by an incomplete sign-out must not pair up
	// with the new profile.
	if err := s.store.RemoveCredential(ctx); err != nil {
		s.logger.Error(ctx, "failed to remove stale credential", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSessionPersistenceFailed, err)
	}

	if err := s.store.SaveProfile(ctx, res.User); err != nil {
		s.logger.Error(ctx, "failed to save profile", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSessionPersistenceFailed, err)
	}

	if err := s.store.SaveCredential(ctx, res.Token); err != nil {
		s.logger.Error(ctx, "failed to save credential", "error", err)
		return nil, errors.Join(
			fmt.Errorf("%w: %w", common.ErrSessionPersistenceFailed, err),
			s.discardRecords(context.WithoutCancel(ctx)),
		)
	}

	if err := s.machine.CommitAuthenticated(res.User, res.Token); err != nil {
		return nil, errors.Join(err, s.discardRecords(context.WithoutCancel(ctx)))
	}

	s.logger.Info(ctx, "signed in", "user_id", res.User.ID)
	return res.User.Clone(), nil
}

// discardRecords removes both session records, attempting each.
func (s *sessionManager) discardRecords(ctx context.Context) error {
	var errs []error
	if err := s.store.RemoveCredential(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.RemoveProfile(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error(ctx, "failed to discard session records", "error", err)
		return err
	}
	return nil
}

// RestoreSession rebuilds the session from the stored records without any
// network call. It is a no-op when a session is already live.
func (s *sessionManager) RestoreSession(ctx context.Context) error {
	release, err := s.machine.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if s.machine.Current().IsAuthenticated() {
		return nil
	}
	if err := s.machine.BeginRestore(); err != nil {
		return err
	}

	profile, err := s.store.GetProfile(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to read stored profile", "error", err)
		s.machine.Clear()
		return err
	}
	credential, err := s.store.GetCredential(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to read stored credential", "error", err)
		s.machine.Clear()
		return err
	}

	if profile == nil || credential.IsEmpty() {
		s.logger.Debug(ctx, "no stored session", "has_profile", profile != nil, "has_credential", !credential.IsEmpty())
		s.machine.Clear()
		return nil
	}

	if err := s.machine.CommitAuthenticated(profile, credential); err != nil {
		s.logger.Warn(ctx, "stored session rejected", "error", err)
		s.machine.Clear()
		if !errors.Is(err, common.ErrInvalidSessionData) {
			err = fmt.Errorf("%w: %w", common.ErrInvalidSessionData, err)
		}
		return err
	}

	s.logger.Info(ctx, "session restored", "user_id", profile.ID)
	return nil
}

// SignOut removes both records and always ends Unauthenticated. Removal
// failures are reported wrapped in common.ErrSignOutIncomplete.
func (s *sessionManager) SignOut(ctx context.Context) error {
	release, err := s.machine.Acquire()
	if err != nil {
		return err
	}
	defer release()

	err = s.discardRecords(ctx)
	s.machine.Clear()

	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSignOutIncomplete, err)
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// UpdateProfile sends patch to the server and, once accepted, applies it to
// the live and stored profile. An empty patch returns the current profile.
func (s *sessionManager) UpdateProfile(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error) {
	release, err := s.machine.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	before := s.machine.Current()
	if !before.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	if patch.IsEmpty() {
		return before.Profile, nil
	}

	if _, err := s.remote.UpdateUser(ctx, patch); err != nil {
		s.logger.Warn(ctx, "remote update failed", "error", err)
		return nil, err
	}

	updated, err := s.machine.UpdateProfile(patch)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveProfile(ctx, updated); err != nil {
		s.logger.Error(ctx, "failed to save updated profile, rolling back", "error", err)
		if rbErr := s.machine.ReplaceProfile(before.Profile); rbErr != nil {
			s.logger.Error(ctx, "rollback failed", "error", rbErr)
			s.machine.Clear()
			return nil, errors.Join(fmt.Errorf("%w: %w", common.ErrSessionPersistenceFailed, err), rbErr)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrSessionPersistenceFailed, err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", updated.ID)
	return updated, nil
}
