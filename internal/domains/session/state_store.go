package session

import (
	"encoding/json"
	"errors"
	"fmt"

	sessionmodel "fake-store/go-client/internal/domains/session/model"
	"fake-store/go-client/internal/securestore"
	"fake-store/go-client/pkg/models"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// StateStore persists the session as two blobs: the raw token and the user
// as JSON.
type StateStore struct {
	kv securestore.KV
}

func NewStateStore(kv securestore.KV) *StateStore {
	return &StateStore{kv: kv}
}

// Load reports false unless both blobs are present and usable.
func (s *StateStore) Load() (sessionmodel.Persisted, bool, error) {
	if s == nil || s.kv == nil {
		return sessionmodel.Persisted{}, false, nil
	}
	token, ok, err := s.kv.Get(tokenKey)
	if err != nil || !ok {
		return sessionmodel.Persisted{}, false, err
	}
	rawUser, ok, err := s.kv.Get(userKey)
	if err != nil || !ok {
		return sessionmodel.Persisted{}, false, err
	}
	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return sessionmodel.Persisted{}, false, fmt.Errorf("persisted user: %w", err)
	}
	out := sessionmodel.Persisted{Token: string(token), User: user}
	return out, out.Complete(), nil
}

func (s *StateStore) Save(p sessionmodel.Persisted) error {
	if s == nil || s.kv == nil {
		return nil
	}
	rawUser, err := json.Marshal(p.User)
	if err != nil {
		return err
	}
	if err := s.kv.Put(tokenKey, []byte(p.Token)); err != nil {
		return err
	}
	return s.kv.Put(userKey, rawUser)
}

func (s *StateStore) Clear() error {
	if s == nil || s.kv == nil {
		return nil
	}
	return errors.Join(s.kv.Delete(tokenKey), s.kv.Delete(userKey))
}
