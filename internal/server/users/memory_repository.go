package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Emails are unique,
// compared case-insensitively.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, ErrEmailTaken
	}

	u := user.Clone()
	u.ID = uuid.NewString()
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return u.Clone(), nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	oldKey, newKey := emailKey(current.Email), emailKey(user.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return nil, ErrEmailTaken
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}

	u := user.Clone()
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = r.now()
	r.byID[u.ID] = u
	return u.Clone(), nil
}
