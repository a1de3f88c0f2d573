package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
	"github.com/dmitrijs2005/gymsession/internal/common"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// Armer receives the credential when a session is committed and is told to
// forget it when the session is cleared.
type Armer interface {
	SetAuthorization(token string)
	ClearAuthorization()
}

// Machine is the in-memory session state. It is the only writer of that
// state; all methods are safe for concurrent use.
type Machine struct {
	mu      sync.RWMutex
	state   State
	profile *models.UserProfile
	armer   Armer

	busy atomic.Bool

	subMu  sync.Mutex
	subs   map[int]chan View
	nextID int
}

func NewMachine(armer Armer) *Machine {
	return &Machine{armer: armer, subs: make(map[int]chan View)}
}

// Acquire takes the single mutating-operation slot. It never waits: if
// another operation holds the slot, common.ErrSessionBusy is returned.
// The returned release func is idempotent.
func (m *Machine) Acquire() (func(), error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, common.ErrSessionBusy
	}
	var once sync.Once
	return func() { once.Do(func() { m.busy.Store(false) }) }, nil
}

// Busy reports whether a mutating operation is in flight.
func (m *Machine) Busy() bool {
	return m.busy.Load()
}

func (m *Machine) Current() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	return View{State: m.state, Profile: m.profile.Clone()}
}

func (m *Machine) BeginRestore() error {
	m.mu.Lock()
	if m.state != Unauthenticated {
		from := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: begin restore from %s", ErrInvalidTransition, from)
	}
	m.state = Restoring
	m.publish(m.viewLocked())
	m.mu.Unlock()
	return nil
}

// CommitAuthenticated moves to Authenticated and arms the outbound client
// with credential before the new view becomes observable.
func (m *Machine) CommitAuthenticated(profile *models.UserProfile, credential models.AuthCredential) error {
	if profile.IsEmpty() {
		return fmt.Errorf("%w: empty profile", common.ErrInvalidSessionData)
	}
	if credential.IsEmpty() {
		return fmt.Errorf("%w: empty credential", common.ErrInvalidSessionData)
	}

	m.mu.Lock()
	if m.state == Authenticated {
		m.mu.Unlock()
		return fmt.Errorf("%w: commit while authenticated", ErrInvalidTransition)
	}
	m.profile = profile.Clone()
	m.state = Authenticated
	if m.armer != nil {
		m.armer.SetAuthorization(string(credential))
	}
	m.publish(m.viewLocked())
	m.mu.Unlock()
	return nil
}

// UpdateProfile merges patch into the committed profile and returns the result.
func (m *Machine) UpdateProfile(patch *models.ProfilePatch) (*models.UserProfile, error) {
	m.mu.Lock()
	if m.state != Authenticated {
		m.mu.Unlock()
		return nil, common.ErrNotAuthenticated
	}
	m.profile = patch.ApplyTo(m.profile)
	v := m.viewLocked()
	m.publish(v)
	m.mu.Unlock()
	return v.Profile, nil
}

// ReplaceProfile swaps the committed profile wholesale, keeping its ID.
// Used to roll back an update that could not be persisted.
func (m *Machine) ReplaceProfile(profile *models.UserProfile) error {
	m.mu.Lock()
	if m.state != Authenticated {
		m.mu.Unlock()
		return common.ErrNotAuthenticated
	}
	if profile.IsEmpty() || profile.ID != m.profile.ID {
		m.mu.Unlock()
		return fmt.Errorf("%w: profile id mismatch", common.ErrInvalidSessionData)
	}
	m.profile = profile.Clone()
	m.publish(m.viewLocked())
	m.mu.Unlock()
	return nil
}

// Clear resets to Unauthenticated from any state and disarms the client.
func (m *Machine) Clear() {
	m.mu.Lock()
	m.state = Unauthenticated
	m.profile = nil
	if m.armer != nil {
		m.armer.ClearAuthorization()
	}
	m.publish(m.viewLocked())
	m.mu.Unlock()
}

// Subscribe returns a channel that immediately receives the current view and
// then every later transition. A slow reader only ever misses intermediate
// views, never the latest one. Call cancel to stop and close the channel.
func (m *Machine) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	m.mu.RLock()
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.viewLocked()
	m.subMu.Unlock()
	m.mu.RUnlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			close(ch)
			m.subMu.Unlock()
		})
	}
	return ch, cancel
}

// publish must be called with m.mu held so observers see transitions in order.
func (m *Machine) publish(v View) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- View{State: v.State, Profile: v.Profile.Clone()}:
		default:
		}
	}
}
