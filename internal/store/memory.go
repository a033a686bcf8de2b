// Package store provides an in-memory account store, used when the
// service runs without a database and by tests.
package store

import (
	"context"
	"sync"

	"github.com/k9mail/accountauth/internal/models"
)

type record struct {
	password *string
	userdata models.UserData
	tokens   map[string]*string
}

// MemoryStore is a thread-safe, map-backed account store. Accounts are
// keyed by (name, type) and listed in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[models.Account]*record
	order    []models.Account
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[models.Account]*record)}
}

// AddAccountExplicitly inserts the account with its password and
// userdata. Inserting an existing account is a no-op.
func (s *MemoryStore) AddAccountExplicitly(ctx context.Context, account models.Account, password *string, userdata models.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account]; ok {
		return nil
	}
	s.accounts[account] = &record{
		password: copyPassword(password),
		userdata: userdata.Clone(),
		tokens:   make(map[string]*string),
	}
	s.order = append(s.order, account)
	return nil
}

// SetPassword stores the account's password slot; unknown accounts are
// ignored.
func (s *MemoryStore) SetPassword(ctx context.Context, account models.Account, password *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.accounts[account]; ok {
		r.password = copyPassword(password)
	}
	return nil
}

// GetPassword returns the account's password slot, nil when unset or
// the account is unknown.
func (s *MemoryStore) GetPassword(ctx context.Context, account models.Account) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.accounts[account]; ok {
		return copyPassword(r.password), nil
	}
	return nil, nil
}

// SetAuthToken stores an auth token for the account; unknown accounts
// are ignored.
func (s *MemoryStore) SetAuthToken(ctx context.Context, account models.Account, tokenType string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.accounts[account]; ok {
		r.tokens[tokenType] = copyPassword(token)
	}
	return nil
}

// GetAuthToken returns the cached token for (account, tokenType), nil
// when absent.
func (s *MemoryStore) GetAuthToken(ctx context.Context, account models.Account, tokenType string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.accounts[account]; ok {
		return copyPassword(r.tokens[tokenType]), nil
	}
	return nil, nil
}

// GetUserData returns a userdata value, "" when the key or account is
// absent.
func (s *MemoryStore) GetUserData(ctx context.Context, account models.Account, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.accounts[account]; ok {
		return r.userdata[key], nil
	}
	return "", nil
}

// ListAccountsByType returns all accounts of the given type in
// insertion order.
func (s *MemoryStore) ListAccountsByType(ctx context.Context, accountType string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []models.Account
	for _, account := range s.order {
		if account.Type == accountType {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// RemoveAccount deletes the account and its associated state; removing
// an unknown account is a no-op.
func (s *MemoryStore) RemoveAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account]; !ok {
		return nil
	}
	delete(s.accounts, account)
	for i, a := range s.order {
		if a == account {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func copyPassword(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
