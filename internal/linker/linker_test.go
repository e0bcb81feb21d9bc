package linker_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/linker"
	"github.com/dropDatabas3/clickauth/internal/providers"
	"github.com/dropDatabas3/clickauth/internal/providers/discord"
	"github.com/dropDatabas3/clickauth/internal/providers/google"
	storefs "github.com/dropDatabas3/clickauth/internal/store/fs"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
)

func discordRaw(id, username string) providers.RawProfile {
	return providers.RawProfile{"id": id, "username": username, "discriminator": "0", "avatar": "abc"}
}

func googleRaw(id string) providers.RawProfile {
	return providers.RawProfile{"id": id, "email": "g@example.com", "name": "G User", "picture": "https://x/p.png"}
}

func TestCreateOrLinkAccount_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	p := discord.New(providers.Config{})

	first, created, err := linker.CreateOrLinkAccount(ctx, repo, p, discordRaw("d-1", "nelly"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, first.IsChanged())
	assert.Len(t, repo.IDs(), 1)
	assert.Equal(t, "nelly", first.Profile.Nickname.Value)

	time.Sleep(2 * time.Millisecond)

	second, created, err := linker.CreateOrLinkAccount(ctx, repo, p, discordRaw("d-1", "nelly-renamed"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Len(t, repo.IDs(), 1)
	assert.Equal(t, "nelly-renamed", second.Credentials.Platforms.Discord.Username)
	// el nickname ya fue actualizado una vez: no se pisa
	assert.Equal(t, "nelly", second.Profile.Nickname.Value)
}

func TestCreateOrLinkAccount_DistinctIdentities(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	p := discord.New(providers.Config{})

	a, _, err := linker.CreateOrLinkAccount(ctx, repo, p, discordRaw("d-1", "one"))
	require.NoError(t, err)
	b, _, err := linker.CreateOrLinkAccount(ctx, repo, p, discordRaw("d-2", "two"))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, repo.IDs(), 2)
}

func TestCreateOrLinkAccount_InvalidProfileWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	raw := discordRaw("d-1", "x")
	delete(raw, "username")

	_, _, err := linker.CreateOrLinkAccount(ctx, repo, discord.New(providers.Config{}), raw)
	assert.ErrorIs(t, err, providers.ErrProfileShape)
	assert.Empty(t, repo.IDs())
}

func TestLinkToAccount(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	d := discord.New(providers.Config{})
	g := google.New(providers.Config{})

	a, _, err := linker.CreateOrLinkAccount(ctx, repo, d, discordRaw("d-1", "nelly"))
	require.NoError(t, err)

	require.NoError(t, linker.LinkToAccount(ctx, repo, g, a, googleRaw("g-1")))
	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-1", stored.PlatformID(account.PlatformGoogle))
	assert.Equal(t, "d-1", stored.PlatformID(account.PlatformDiscord))

	// mismo slot, otra identidad
	err = linker.LinkToAccount(ctx, repo, g, stored, googleRaw("g-2"))
	assert.ErrorIs(t, err, linker.ErrIdentityConflict)
	assert.Equal(t, "g-1", stored.PlatformID(account.PlatformGoogle))
}

func TestLinkToAccount_IdentityOwnedByAnotherAccount(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	d := discord.New(providers.Config{})

	_, _, err := linker.CreateOrLinkAccount(ctx, repo, d, discordRaw("d-1", "owner"))
	require.NoError(t, err)

	other := account.New()
	require.NoError(t, repo.Save(ctx, other))

	err = linker.LinkToAccount(ctx, repo, d, other, discordRaw("d-1", "owner"))
	assert.ErrorIs(t, err, linker.ErrIdentityConflict)
	assert.False(t, other.HasPlatform(account.PlatformDiscord))
}

func withPlatforms(t *testing.T, raws map[string]providers.RawProfile) *account.Account {
	t.Helper()
	a := account.New()
	if raw, ok := raws[account.PlatformDiscord]; ok {
		require.NoError(t, discord.New(providers.Config{}).AssignOrUpdateFields(a, raw))
	}
	if raw, ok := raws[account.PlatformGoogle]; ok {
		require.NoError(t, google.New(providers.Config{}).AssignOrUpdateFields(a, raw))
	}
	a.ResetChanged()
	return a
}

func TestTryDisconnect_OnlyGoogle(t *testing.T) {
	a := withPlatforms(t, map[string]providers.RawProfile{account.PlatformGoogle: googleRaw("g-1")})

	assert.Equal(t, linker.AtLeastOneRequired, linker.TryDisconnect(a, account.PlatformGoogle))
	assert.True(t, a.HasPlatform(account.PlatformGoogle))
	assert.False(t, a.IsChanged())
}

func TestTryDisconnect_TwoPlatforms(t *testing.T) {
	a := withPlatforms(t, map[string]providers.RawProfile{
		account.PlatformGoogle:  googleRaw("g-1"),
		account.PlatformDiscord: discordRaw("d-1", "x"),
	})

	assert.Equal(t, linker.Disconnected, linker.TryDisconnect(a, account.PlatformGoogle))
	assert.True(t, a.IsChanged())
	assert.Equal(t, linker.AtLeastOneRequired, linker.TryDisconnect(a, account.PlatformDiscord))
	assert.Equal(t, linker.NotConnected, linker.TryDisconnect(a, account.PlatformGoogle))
}

func TestTryDisconnect_WithStandardLogin(t *testing.T) {
	a := withPlatforms(t, map[string]providers.RawProfile{
		account.PlatformGoogle:  googleRaw("g-1"),
		account.PlatformDiscord: discordRaw("d-1", "x"),
	})
	a.SetStandard("me@example.com", "hash")

	assert.Equal(t, linker.Disconnected, linker.TryDisconnect(a, account.PlatformGoogle))
	assert.Equal(t, linker.Disconnected, linker.TryDisconnect(a, account.PlatformDiscord))
	assert.Zero(t, a.ConnectedPlatforms())
}

func TestTryDisconnect_InvalidPlatform(t *testing.T) {
	a := withPlatforms(t, map[string]providers.RawProfile{account.PlatformGoogle: googleRaw("g-1")})
	assert.Equal(t, linker.InvalidPlatform, linker.TryDisconnect(a, "myspace"))
	assert.Equal(t, "InvalidPlatform", linker.InvalidPlatform.String())
	assert.Equal(t, "Disconnected", linker.Disconnected.String())
}

// racingDiscord retiene las dos primeras búsquedas hasta que ambas terminaron,
// de modo que los dos logins ven la identidad como nueva.
type racingDiscord struct {
	*discord.Provider
	calls atomic.Int32
	both  chan struct{}
}

func (r *racingDiscord) FindAccountWithSameProviderIdentity(ctx context.Context, repo repository.AccountRepository, raw providers.RawProfile) (*account.Account, error) {
	a, err := r.Provider.FindAccountWithSameProviderIdentity(ctx, repo, raw)
	n := r.calls.Add(1)
	if n == 2 {
		close(r.both)
	}
	if n <= 2 {
		<-r.both
	}
	return a, err
}

func TestCreateOrLinkAccount_ConcurrentFirstLoginsShareAccount(t *testing.T) {
	ctx := context.Background()
	repo, err := storefs.Open(filepath.Join(t.TempDir(), "accounts.json"))
	require.NoError(t, err)
	p := &racingDiscord{Provider: discord.New(providers.Config{}), both: make(chan struct{})}

	type result struct {
		id      string
		created bool
		err     error
	}
	results := make(chan result, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, created, err := linker.CreateOrLinkAccount(ctx, repo, p, discordRaw("d-1", "nelly"))
			r := result{created: created, err: err}
			if a != nil {
				r.id = a.ID
			}
			results <- r
		}()
	}
	wg.Wait()
	close(results)

	var ids []string
	createdCount := 0
	for r := range results {
		require.NoError(t, r.err)
		ids = append(ids, r.id)
		if r.created {
			createdCount++
		}
	}
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, 1, createdCount)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	bound := 0
	for _, a := range all {
		if a.PlatformID(account.PlatformDiscord) == "d-1" {
			bound++
		}
	}
	assert.Equal(t, 1, bound)
}
