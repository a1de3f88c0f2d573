package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/client/client"
	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/client/repositories/records"
	"github.com/dmitrijs2005/gymsession/internal/client/session"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupStore(t *testing.T) (*records.RecordStore, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return records.NewRecordStore(records.NewSQLiteRepository(db)), db
}

func rawRecord(t *testing.T, db *sql.DB, key string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM records WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	require.NoError(t, err)
	return v
}

func putRecord(t *testing.T, db *sql.DB, key string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO records(key,value) VALUES(?,?)`, key, v)
	require.NoError(t, err)
}

var ana = &models.UserProfile{ID: "1", Name: "Ana", Email: "a@b.com"}

func strPtr(s string) *string { return &s }

// ---- fake remote ----

// fakeRemote implements RemoteAuth and session.Armer.
type fakeRemote struct {
	mu sync.Mutex

	SignInRet *models.SignInResult
	SignInErr error

	UpdateRet *models.UserProfile
	UpdateErr error

	// block, when set, is waited on inside SignIn.
	block chan struct{}

	signInCalls int
	updateCalls int
	armCalls    int
	token       string
}

func (f *fakeRemote) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	f.mu.Lock()
	f.signInCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.SignInRet, f.SignInErr
}

func (f *fakeRemote) UpdateUser(ctx context.Context, patch *models.ProfilePatch) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeRemote) SetAuthorization(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armCalls++
	f.token = token
}

func (f *fakeRemote) ClearAuthorization() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

func (f *fakeRemote) calls() (signIn, update, arm int, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls, f.updateCalls, f.armCalls, f.token
}

// ---- faulty store ----

// faultyStore delegates to a real store unless an error is preset.
type faultyStore struct {
	records.Store

	SaveProfileErr      error
	SaveCredentialErr   error
	GetProfileErr       error
	GetCredentialErr    error
	RemoveProfileErr    error
	RemoveCredentialErr error

	removeProfileCalls    int
	removeCredentialCalls int
	saveProfileCalls      int
}

func (s *faultyStore) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	s.saveProfileCalls++
	if s.SaveProfileErr != nil {
		return s.SaveProfileErr
	}
	return s.Store.SaveProfile(ctx, p)
}

func (s *faultyStore) SaveCredential(ctx context.Context, c models.AuthCredential) error {
	if s.SaveCredentialErr != nil {
		return s.SaveCredentialErr
	}
	return s.Store.SaveCredential(ctx, c)
}

func (s *faultyStore) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	if s.GetProfileErr != nil {
		return nil, s.GetProfileErr
	}
	return s.Store.GetProfile(ctx)
}

func (s *faultyStore) GetCredential(ctx context.Context) (models.AuthCredential, error) {
	if s.GetCredentialErr != nil {
		return "", s.GetCredentialErr
	}
	return s.Store.GetCredential(ctx)
}

func (s *faultyStore) RemoveProfile(ctx context.Context) error {
	s.removeProfileCalls++
	if s.RemoveProfileErr != nil {
		return s.RemoveProfileErr
	}
	return s.Store.RemoveProfile(ctx)
}

func (s *faultyStore) RemoveCredential(ctx context.Context) error {
	s.removeCredentialCalls++
	if s.RemoveCredentialErr != nil {
		return s.RemoveCredentialErr
	}
	return s.Store.RemoveCredential(ctx)
}

func storageErr(op, key string) error {
	return &records.StorageError{Op: op, Key: key, Err: errors.New("disk full")}
}

type fixture struct {
	mgr     SessionManager
	machine *session.Machine
	remote  *fakeRemote
	store   *faultyStore
	db      *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	real, db := setupStore(t)
	remote := &fakeRemote{SignInRet: &models.SignInResult{User: ana.Clone(), Token: "tok-123"}}
	store := &faultyStore{Store: real}
	m := session.NewMachine(remote)
	return &fixture{
		mgr:     NewSessionManager(m, store, remote, logging.NewDiscard()),
		machine: m,
		remote:  remote,
		store:   store,
		db:      db,
	}
}

// assertConsistent checks that an authenticated view is backed by both
// records and an armed client.
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	v := f.mgr.Current()
	_, _, _, token := f.remote.calls()
	if !v.IsAuthenticated() {
		assert.Empty(t, token, "client armed while unauthenticated")
		return
	}
	var stored models.UserProfile
	require.NoError(t, json.Unmarshal(rawRecord(t, f.db, records.KeyProfile), &stored))
	if diff := cmp.Diff(*v.Profile, stored); diff != "" {
		t.Fatalf("stored profile differs (-mem +stored):\n%s", diff)
	}
	assert.Equal(t, string(rawRecord(t, f.db, records.KeyCredential)), token)
}

// ---- SignIn ----

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t)

	got, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, ana, got)

	v := f.mgr.Current()
	assert.Equal(t, session.Authenticated, v.State)
	assert.Equal(t, "Ana", v.Profile.Name)
	assert.Equal(t, []byte("tok-123"), rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

func TestSignIn_RemoteFailure(t *testing.T) {
	for _, tc := range []struct {
		name string
		ret  *models.SignInResult
		err  error
	}{
		{"rejected", nil, errors.New("401")},
		{"no token", &models.SignInResult{User: ana.Clone()}, nil},
		{"no user", &models.SignInResult{Token: "tok"}, nil},
		{"nil result", nil, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.remote.SignInRet, f.remote.SignInErr = tc.ret, tc.err

			_, err := f.mgr.SignIn(context.Background(), "a@b.com", "x")
			require.ErrorIs(t, err, common.ErrAuthenticationFailed)
			assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
			assert.Nil(t, rawRecord(t, f.db, records.KeyProfile))
			assert.Equal(t, 0, f.store.saveProfileCalls)
			f.assertConsistent(t)
		})
	}
}

func TestSignIn_KeepsRemoteReason(t *testing.T) {
	f := newFixture(t)
	f.remote.SignInErr = &client.RemoteError{Status: 401, Message: "invalid credentials"}

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "x")
	var re *client.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "invalid credentials", re.Message)
}

func TestSignIn_ProfileSaveFails(t *testing.T) {
	f := newFixture(t)
	f.store.SaveProfileErr = storageErr("save", records.KeyProfile)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	assert.Nil(t, rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

func TestSignIn_CredentialSaveFailsCompensates(t *testing.T) {
	f := newFixture(t)
	f.store.SaveCredentialErr = storageErr("save", records.KeyCredential)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	assert.Equal(t, 1, f.store.removeProfileCalls)
	assert.Equal(t, 2, f.store.removeCredentialCalls)
	assert.Nil(t, rawRecord(t, f.db, records.KeyProfile), "orphaned profile left behind")
	assert.Nil(t, rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

func TestSignIn_CompensationSurvivesCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.store.SaveCredentialErr = storageErr("save", records.KeyCredential)

	// cancel right after the profile is written
	f.store.Store = cancelAfterSave{Store: f.store.Store, cancel: cancel}

	_, err := f.mgr.SignIn(ctx, "a@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	assert.Nil(t, rawRecord(t, f.db, records.KeyProfile))
}

type cancelAfterSave struct {
	records.Store
	cancel context.CancelFunc
}

func (c cancelAfterSave) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	err := c.Store.SaveProfile(ctx, p)
	c.cancel()
	return err
}

func TestSignIn_CompensationFailureIsJoined(t *testing.T) {
	f := newFixture(t)
	f.store.SaveCredentialErr = storageErr("save", records.KeyCredential)
	f.store.RemoveProfileErr = storageErr("remove", records.KeyProfile)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	var se *records.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
}

func TestSignIn_RejectedWhileAuthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	bob := &models.UserProfile{ID: "2", Name: "Bob", Email: "b@b.com"}
	f.remote.SignInRet = &models.SignInResult{User: bob, Token: "tok-bob"}
	f.store.SaveCredentialErr = storageErr("save", records.KeyCredential)

	_, err = f.mgr.SignIn(context.Background(), "b@b.com", "secret")
	require.ErrorIs(t, err, common.ErrAlreadyAuthenticated)

	signIn, _, _, _ := f.remote.calls()
	assert.Equal(t, 1, signIn, "second sign in must not reach the server")
	assert.Equal(t, "Ana", f.mgr.Current().Profile.Name)
	assert.Equal(t, []byte("tok-123"), rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

// A credential left by an incomplete sign-out must never end up paired
// with the next user's profile, even when every compensation step but one
// fails.
func TestSignIn_StaleCredentialNeverPairsWithNewProfile(t *testing.T) {
	f := newFixture(t)
	putRecord(t, f.db, records.KeyCredential, []byte("tok-old"))

	bob := &models.UserProfile{ID: "2", Name: "Bob", Email: "b@b.com"}
	f.remote.SignInRet = &models.SignInResult{User: bob, Token: "tok-bob"}
	f.store.SaveCredentialErr = storageErr("save", records.KeyCredential)
	f.store.RemoveProfileErr = storageErr("remove", records.KeyProfile)

	_, err := f.mgr.SignIn(context.Background(), "b@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	assert.Nil(t, rawRecord(t, f.db, records.KeyCredential), "stale credential left on disk")
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	f.assertConsistent(t)

	// a fresh process must not restore Bob with someone else's token
	remote := &fakeRemote{}
	real := records.NewRecordStore(records.NewSQLiteRepository(f.db))
	mgr := NewSessionManager(session.NewMachine(remote), real, remote, logging.NewDiscard())
	require.NoError(t, mgr.RestoreSession(context.Background()))
	assert.Equal(t, session.Unauthenticated, mgr.Current().State)
	_, _, _, token := remote.calls()
	assert.Empty(t, token)
}

func TestSignIn_StaleCredentialRemovalFails(t *testing.T) {
	f := newFixture(t)
	f.store.RemoveCredentialErr = storageErr("remove", records.KeyCredential)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)
	assert.Equal(t, 0, f.store.saveProfileCalls)
	assert.Nil(t, rawRecord(t, f.db, records.KeyProfile))
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	f.assertConsistent(t)
}

func TestSignIn_OverwritesStaleCredential(t *testing.T) {
	f := newFixture(t)
	putRecord(t, f.db, records.KeyCredential, []byte("tok-old"))

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-123"), rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

// ---- RestoreSession ----

func TestRestore_BothRecords(t *testing.T) {
	f := newFixture(t)
	data, _ := json.Marshal(ana)
	putRecord(t, f.db, records.KeyProfile, data)
	putRecord(t, f.db, records.KeyCredential, []byte("tok-123"))

	require.NoError(t, f.mgr.RestoreSession(context.Background()))

	v := f.mgr.Current()
	assert.Equal(t, session.Authenticated, v.State)
	assert.Equal(t, ana, v.Profile)
	signIn, update, _, token := f.remote.calls()
	assert.Zero(t, signIn+update, "restore must not call the server")
	assert.Equal(t, "tok-123", token)
	f.assertConsistent(t)
}

func TestRestore_PartialOrNoRecords(t *testing.T) {
	data, _ := json.Marshal(ana)
	for _, tc := range []struct {
		name    string
		profile []byte
		cred    []byte
	}{
		{"nothing", nil, nil},
		{"profile only", data, nil},
		{"credential only", nil, []byte("tok")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.profile != nil {
				putRecord(t, f.db, records.KeyProfile, tc.profile)
			}
			if tc.cred != nil {
				putRecord(t, f.db, records.KeyCredential, tc.cred)
			}

			require.NoError(t, f.mgr.RestoreSession(context.Background()))
			assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
			f.assertConsistent(t)
		})
	}
}

func TestRestore_ReadErrorFailsSafe(t *testing.T) {
	for _, key := range []string{records.KeyProfile, records.KeyCredential} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t)
			data, _ := json.Marshal(ana)
			putRecord(t, f.db, records.KeyProfile, data)
			putRecord(t, f.db, records.KeyCredential, []byte("tok"))
			if key == records.KeyProfile {
				f.store.GetProfileErr = storageErr("get", key)
			} else {
				f.store.GetCredentialErr = storageErr("get", key)
			}

			err := f.mgr.RestoreSession(context.Background())
			require.ErrorIs(t, err, common.ErrStorage)
			assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
			_, _, _, token := f.remote.calls()
			assert.Empty(t, token)
		})
	}
}

func TestRestore_CorruptProfile(t *testing.T) {
	f := newFixture(t)
	putRecord(t, f.db, records.KeyProfile, []byte("{not json"))
	putRecord(t, f.db, records.KeyCredential, []byte("tok"))

	err := f.mgr.RestoreSession(context.Background())
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
}

func TestRestore_ProfileWithoutIDIsInvalid(t *testing.T) {
	f := newFixture(t)
	putRecord(t, f.db, records.KeyProfile, []byte(`{"name":"Ana"}`))
	putRecord(t, f.db, records.KeyCredential, []byte("tok"))

	err := f.mgr.RestoreSession(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidSessionData)
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
}

func TestRestore_IdempotentWhenAuthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	_, _, armBefore, _ := f.remote.calls()

	f.store.GetProfileErr = storageErr("get", records.KeyProfile)
	require.NoError(t, f.mgr.RestoreSession(context.Background()))
	require.NoError(t, f.mgr.RestoreSession(context.Background()))

	signIn, update, armAfter, _ := f.remote.calls()
	assert.Equal(t, 1, signIn)
	assert.Zero(t, update)
	assert.Equal(t, armBefore, armAfter, "client armed twice")
	assert.Equal(t, session.Authenticated, f.mgr.Current().State)
}

func TestRestore_WithSQLMockDriverFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM records WHERE key = \?`).
		WithArgs(records.KeyProfile).
		WillReturnError(errors.New("database is locked"))

	remote := &fakeRemote{}
	m := session.NewMachine(remote)
	store := records.NewRecordStore(records.NewSQLiteRepository(db))
	mgr := NewSessionManager(m, store, remote, logging.NewDiscard())

	err = mgr.RestoreSession(context.Background())
	var se *records.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, records.KeyProfile, se.Key)
	assert.Equal(t, session.Unauthenticated, mgr.Current().State)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ---- SignOut ----

func TestSignOut_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	require.NoError(t, f.mgr.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	assert.Nil(t, rawRecord(t, f.db, records.KeyProfile))
	assert.Nil(t, rawRecord(t, f.db, records.KeyCredential))
	f.assertConsistent(t)
}

func TestSignOut_FailOpen(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	f.store.RemoveCredentialErr = storageErr("remove", records.KeyCredential)

	err = f.mgr.SignOut(context.Background())
	require.ErrorIs(t, err, common.ErrSignOutIncomplete)
	require.ErrorIs(t, err, common.ErrStorage)

	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
	assert.Equal(t, 1, f.store.removeProfileCalls, "profile removal must still be attempted")
	assert.Nil(t, rawRecord(t, f.db, records.KeyProfile))
	_, _, _, token := f.remote.calls()
	assert.Empty(t, token)
}

func TestSignOut_WhenSignedOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mgr.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)
}

// ---- UpdateProfile ----

func TestUpdateProfile_NotAuthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Name: strPtr("X")})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, update, _, _ := f.remote.calls()
	assert.Zero(t, update)
}

func TestUpdateProfile_Success(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	got, err := f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{
		Name:        strPtr("Ana Maria"),
		Password:    strPtr("new"),
		OldPassword: strPtr("secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)
	assert.Equal(t, "1", got.ID)
	assert.NotContains(t, string(rawRecord(t, f.db, records.KeyProfile)), "new")
	f.assertConsistent(t)
}

func TestUpdateProfile_EmptyPatchIsNoop(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	got, err := f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, ana, got)
	_, update, _, _ := f.remote.calls()
	assert.Zero(t, update)
}

func TestUpdateProfile_RemoteFailureIsolated(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	storedBefore := rawRecord(t, f.db, records.KeyProfile)

	remoteErr := &client.RemoteError{Status: 400, Message: "old password does not match"}
	f.remote.UpdateErr = remoteErr

	_, err = f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Name: strPtr("Eve")})
	require.ErrorIs(t, err, remoteErr)

	assert.Equal(t, ana, f.mgr.Current().Profile)
	assert.Equal(t, storedBefore, rawRecord(t, f.db, records.KeyProfile))
	f.assertConsistent(t)
}

func TestUpdateProfile_SaveFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	f.store.SaveProfileErr = storageErr("save", records.KeyProfile)

	_, err = f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Name: strPtr("Eve")})
	require.ErrorIs(t, err, common.ErrSessionPersistenceFailed)

	assert.Equal(t, session.Authenticated, f.mgr.Current().State)
	assert.Equal(t, ana, f.mgr.Current().Profile)
	f.assertConsistent(t)
}

// ---- busy guard ----

func TestBusy_ConcurrentOperationsFailFast(t *testing.T) {
	f := newFixture(t)
	f.remote.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
		done <- err
	}()

	require.Eventually(t, f.machine.Busy, time.Second, time.Millisecond)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	assert.ErrorIs(t, err, common.ErrSessionBusy)
	assert.ErrorIs(t, f.mgr.RestoreSession(context.Background()), common.ErrSessionBusy)
	assert.ErrorIs(t, f.mgr.SignOut(context.Background()), common.ErrSessionBusy)
	_, err = f.mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Name: strPtr("X")})
	assert.ErrorIs(t, err, common.ErrSessionBusy)

	// Current never blocks on the in-flight operation.
	assert.Equal(t, session.Unauthenticated, f.mgr.Current().State)

	close(f.remote.block)
	require.NoError(t, <-done)
	assert.False(t, f.machine.Busy())

	signIn, _, _, _ := f.remote.calls()
	assert.Equal(t, 1, signIn)
}

func TestBusy_ReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	f.remote.SignInErr = errors.New("boom")

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.False(t, f.machine.Busy())

	f.remote.SignInErr = nil
	_, err = f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
}

// ---- subscription ----

func TestSubscribe_SeesSignInAndSignOut(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.mgr.Subscribe()
	defer cancel()
	assert.Equal(t, session.Unauthenticated, (<-ch).State)

	_, err := f.mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, (<-ch).State)

	require.NoError(t, f.mgr.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, (<-ch).State)
}

// ---- end to end over HTTP ----

func TestSignIn_ArmsHTTPClient(t *testing.T) {
	var lastAuth atomic.Value
	lastAuth.Store("")

	r := chi.NewRouter()
	r.Post(api.PathSessions, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.SignInResponse{
			User:  &api.User{ID: "1", Name: "Ana", Email: "a@b.com"},
			Token: "tok-123",
		})
	})
	r.Put(api.PathUsers, func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get(common.AuthorizationHeaderName))
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	store, db := setupStore(t)
	hc := client.NewHTTPClient(srv.URL, time.Second, nil, logging.NewDiscard())
	m := session.NewMachine(hc)
	mgr := NewSessionManager(m, store, hc, logging.NewDiscard())

	_, err := mgr.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", mgr.Current().Profile.Name)
	assert.Equal(t, []byte("tok-123"), rawRecord(t, db, records.KeyCredential))

	_, err = mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Avatar: strPtr("a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", lastAuth.Load())

	require.NoError(t, mgr.SignOut(context.Background()))
	_, err = mgr.UpdateProfile(context.Background(), &models.ProfilePatch{Avatar: strPtr("b.png")})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	// a fresh process finds nothing to restore after sign out
	hc2 := client.NewHTTPClient(srv.URL, time.Second, nil, logging.NewDiscard())
	mgr2 := NewSessionManager(session.NewMachine(hc2), store, hc2, logging.NewDiscard())
	require.NoError(t, mgr2.RestoreSession(context.Background()))
	assert.Equal(t, session.Unauthenticated, mgr2.Current().State)
}
