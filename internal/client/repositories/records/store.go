package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gymsession/internal/client/models"
)

// RecordStore implements Store on top of a raw key/value Repository.
// The profile is stored as JSON, the credential as its raw bytes.
type RecordStore struct {
	repo Repository
}

func NewRecordStore(repo Repository) *RecordStore {
	return &RecordStore{repo: repo}
}

func (s *RecordStore) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p.IsEmpty() {
		return &StorageError{Op: "save", Key: KeyProfile, Err: fmt.Errorf("empty profile")}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return &StorageError{Op: "save", Key: KeyProfile, Err: err}
	}
	if err := s.repo.Set(ctx, KeyProfile, data); err != nil {
		return &StorageError{Op: "save", Key: KeyProfile, Err: err}
	}
	return nil
}

// GetProfile returns (nil, nil) when no profile is stored.
func (s *RecordStore) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	data, err := s.repo.Get(ctx, KeyProfile)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: KeyProfile, Err: err}
	}
	if data == nil {
		return nil, nil
	}
	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &StorageError{Op: "decode", Key: KeyProfile, Err: err}
	}
	return &p, nil
}

func (s *RecordStore) RemoveProfile(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyProfile); err != nil {
		return &StorageError{Op: "remove", Key: KeyProfile, Err: err}
	}
	return nil
}

func (s *RecordStore) SaveCredential(ctx context.Context, c models.AuthCredential) error {
	if c.IsEmpty() {
		return &StorageError{Op: "save", Key: KeyCredential, Err: fmt.Errorf("empty credential")}
	}
	if err := s.repo.Set(ctx, KeyCredential, []byte(c)); err != nil {
		return &StorageError{Op: "save", Key: KeyCredential, Err: err}
	}
	return nil
}

// GetCredential returns ("", nil) when no credential is stored.
func (s *RecordStore) GetCredential(ctx context.Context) (models.AuthCredential, error) {
	data, err := s.repo.Get(ctx, KeyCredential)
	if err != nil {
		return "", &StorageError{Op: "get", Key: KeyCredential, Err: err}
	}
	return models.AuthCredential(data), nil
}

func (s *RecordStore) RemoveCredential(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyCredential); err != nil {
		return &StorageError{Op: "remove", Key: KeyCredential, Err: err}
	}
	return nil
}
