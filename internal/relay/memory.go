package relay

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory es el backend en proceso sobre go-cache. El janitor de go-cache
// queda apagado: el barrido lo dispara el llamador vía TryRemoveExpiredEntries.
type Memory struct {
	// mu serializa pop contra add/sweep para que Get+Delete sea atómico.
	mu  sync.Mutex
	c   *gocache.Cache
	ttl time.Duration
}

var _ Relay = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{c: gocache.New(ttl, 0), ttl: ttl}
}

func (m *Memory) TTL() time.Duration { return m.ttl }

func (m *Memory) AddEntry(_ context.Context, key string, payload []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	cp := append([]byte(nil), payload...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Set(key, cp, m.ttl)
	return nil
}

func (m *Memory) PopEntry(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(key) // go-cache ya devuelve !ok para entradas vencidas
	if !ok {
		return nil, false, nil
	}
	m.c.Delete(key)
	b, _ := v.([]byte)
	return b, true, nil
}

func (m *Memory) TryRemoveExpiredEntries(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.c.ItemCount()
	m.c.DeleteExpired()
	return before - m.c.ItemCount(), nil
}

// EntriesCount incluye entradas vencidas aún no barridas.
func (m *Memory) EntriesCount(_ context.Context) (int, error) {
	return m.c.ItemCount(), nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Flush()
	return nil
}
