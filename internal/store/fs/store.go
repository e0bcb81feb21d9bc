// Package fs implementa AccountRepository sobre un único archivo JSON.
//
// El archivo se carga completo al abrir y se reescribe completo en cada Save
// (write tmp → fsync → rename), igual que el control plane FS.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
)

type document struct {
	Accounts []*account.Account `json:"accounts"`
}

// Store guarda todas las cuentas en memoria y las persiste en path.
type Store struct {
	mu       sync.RWMutex
	path     string
	accounts []*account.Account
}

var _ repository.AccountRepository = (*Store)(nil)

// Open carga path; si no existe arranca vacío y lo crea en el primer Save.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("fs store: read %s: %w", path, err)
	}
	if len(b) == 0 {
		return s, nil
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("fs store: decode %s: %w", path, err)
	}
	for _, a := range doc.Accounts {
		a.ResetChanged()
	}
	s.accounts = doc.Accounts
	return s, nil
}

// Path devuelve la ruta del archivo de datos.
func (s *Store) Path() string { return s.path }

func (s *Store) FindByID(ctx context.Context, id string) (*account.Account, error) {
	return s.findOne(func(a *account.Account) bool { return a.ID == id })
}

func (s *Store) FindByProviderID(ctx context.Context, provider, providerUserID string) (*account.Account, error) {
	if providerUserID == "" {
		return nil, repository.ErrNotFound
	}
	return s.findOne(func(a *account.Account) bool { return a.PlatformID(provider) == providerUserID })
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return nil, repository.ErrNotFound
	}
	return s.findOne(func(a *account.Account) bool {
		return a.Credentials.Standard != nil && a.Credentials.Standard.Email == email
	})
}

func (s *Store) findOne(match func(*account.Account) bool) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if match(a) {
			return a.Clone()
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Save(ctx context.Context, a *account.Account) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("fs store: save: %w", repository.ErrConflict)
	}
	c, err := a.Clone()
	if err != nil {
		return fmt.Errorf("fs store: clone: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*account.Account, 0, len(s.accounts)+1)
	replaced := false
	for _, cur := range s.accounts {
		if cur.SharesIdentityWith(c) {
			return fmt.Errorf("fs store: save %s: identity held by %s: %w", c.ID, cur.ID, repository.ErrConflict)
		}
		if cur.ID == c.ID {
			next = append(next, c)
			replaced = true
			continue
		}
		next = append(next, cur)
	}
	if !replaced {
		next = append(next, c)
	}
	if err := s.flush(next); err != nil {
		return err
	}
	s.accounts = next
	a.ResetChanged()
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		c, err := a.Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flush(nil); err != nil {
		return err
	}
	s.accounts = nil
	return nil
}

// flush serializa accounts; se llama con el lock de escritura tomado.
func (s *Store) flush(accounts []*account.Account) error {
	if accounts == nil {
		accounts = []*account.Account{}
	}
	b, err := json.MarshalIndent(document{Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("fs store: encode: %w", err)
	}
	return writeFileAtomic(s.path, b, 0o600)
}

// writeFileAtomic: tmp en el mismo dir → Sync → Close → Chmod → Rename.
// Solo en Windows, si rename falla con el destino bloqueado, reintenta tras borrarlo.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fs store: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".accounts-*")
	if err != nil {
		return fmt.Errorf("fs store: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("fs store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fs store: fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fs store: close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, path); err != nil {
		if runtime.GOOS != "windows" {
			return fmt.Errorf("fs store: rename: %w", err)
		}
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("fs store: rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
