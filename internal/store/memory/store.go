// Package memory es un AccountRepository en memoria, usado en tests y en
// modo efímero (storage.driver=memory).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
	order    []string
}

var _ repository.AccountRepository = (*Store)(nil)

func New() *Store {
	return &Store{accounts: make(map[string]*account.Account)}
}

func (s *Store) FindByID(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a.Clone()
}

func (s *Store) FindByProviderID(_ context.Context, provider, providerUserID string) (*account.Account, error) {
	if providerUserID == "" {
		return nil, repository.ErrNotFound
	}
	return s.find(func(a *account.Account) bool { return a.PlatformID(provider) == providerUserID })
}

func (s *Store) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return nil, repository.ErrNotFound
	}
	return s.find(func(a *account.Account) bool {
		return a.Credentials.Standard != nil && a.Credentials.Standard.Email == email
	})
}

func (s *Store) find(match func(*account.Account) bool) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if a := s.accounts[id]; match(a) {
			return a.Clone()
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Save(_ context.Context, a *account.Account) error {
	c, err := a.Clone()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.accounts {
		if cur.SharesIdentityWith(c) {
			return fmt.Errorf("memory store: identity held by %s: %w", cur.ID, repository.ErrConflict)
		}
	}
	if _, ok := s.accounts[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.accounts[c.ID] = c
	a.ResetChanged()
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*account.Account, 0, len(s.order))
	for _, id := range s.order {
		c, err := s.accounts[id].Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*account.Account)
	s.order = nil
	return nil
}

// IDs devuelve los ids ordenados; útil en tests.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]string(nil), s.order...)
	sort.Strings(out)
	return out
}
