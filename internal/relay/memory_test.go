package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SinglePop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	require.NoError(t, m.AddEntry(ctx, "k", []byte("v")))
	got, ok, err := m.PopEntry(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok, err = m.PopEntry(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_AddOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	require.NoError(t, m.AddEntry(ctx, "k", []byte("first")))
	require.NoError(t, m.AddEntry(ctx, "k", []byte("second")))

	n, err := m.EntriesCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok, _ := m.PopEntry(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "second", string(got))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(100 * time.Millisecond)

	require.NoError(t, m.AddEntry(ctx, "early", []byte("1")))
	require.NoError(t, m.AddEntry(ctx, "late", []byte("2")))

	time.Sleep(50 * time.Millisecond)
	got, ok, err := m.PopEntry(ctx, "early")
	require.NoError(t, err)
	require.True(t, ok, "entry must still be poppable at +50ms")
	assert.Equal(t, "1", string(got))

	time.Sleep(150 * time.Millisecond)

	// vencida pero sin barrer: sigue contada, pero no se puede retirar
	n, _ := m.EntriesCount(ctx)
	assert.Equal(t, 1, n)

	removed, err := m.TryRemoveExpiredEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, _ = m.EntriesCount(ctx)
	assert.Equal(t, 0, n)
	_, ok, _ = m.PopEntry(ctx, "late")
	assert.False(t, ok)
}

func TestMemory_ExpiredUnsweptIsAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(20 * time.Millisecond)
	require.NoError(t, m.AddEntry(ctx, "k", []byte("v")))
	time.Sleep(40 * time.Millisecond)

	_, ok, err := m.PopEntry(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ClearAndEmptyKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	require.NoError(t, m.AddEntry(ctx, "a", nil))
	require.NoError(t, m.AddEntry(ctx, "b", nil))
	require.NoError(t, m.Clear(ctx))
	n, _ := m.EntriesCount(ctx)
	assert.Equal(t, 0, n)

	assert.ErrorIs(t, m.AddEntry(ctx, "", []byte("x")), ErrEmptyKey)
}

func TestMemory_ConcurrentPopDeliversOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	for round := 0; round < 50; round++ {
		require.NoError(t, m.AddEntry(ctx, "session", []byte("pair")))

		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := m.PopEntry(ctx, "session"); ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins)
	}
}

func TestSweep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMemory(10 * time.Millisecond)
	require.NoError(t, m.AddEntry(ctx, "k", []byte("v")))

	seen := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- Sweep(ctx, m, 15*time.Millisecond, func(n int) {
			select {
			case seen <- n:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		n, _ := m.EntriesCount(context.Background())
		return n == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
