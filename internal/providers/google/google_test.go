package google_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/providers"
	"github.com/dropDatabas3/clickauth/internal/providers/google"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
)

func profile(id string) providers.RawProfile {
	return providers.RawProfile{
		"id":             id,
		"email":          "ada@example.com",
		"verified_email": true,
		"name":           "Ada Lovelace",
		"picture":        "https://lh3.googleusercontent.com/a/x",
	}
}

func TestAuthorizeURL(t *testing.T) {
	p := google.New(providers.Config{ClientID: "gid", RedirectURL: "http://localhost:3000/login/google/callback"})
	u, err := url.Parse(p.AuthorizeURL("st"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "/o/oauth2/v2/auth", u.Path)
	assert.ElementsMatch(t, []string{"profile", "email"}, strings.Fields(u.Query().Get("scope")))
}

func TestSchemaAndAssign(t *testing.T) {
	p := google.New(providers.Config{})
	a := account.New()

	bad := profile("g-1")
	bad["picture"] = 7.0
	assert.False(t, p.IsDataValid(bad))

	require.NoError(t, p.AssignOrUpdateFields(a, profile("g-1")))
	slot := a.Credentials.Platforms.Google
	require.NotNil(t, slot)
	assert.Equal(t, "g-1", slot.ID)
	assert.Equal(t, "ada@example.com", slot.Email)
	assert.Equal(t, "Ada Lovelace", p.DisplayName(profile("g-1")))

	assert.False(t, p.IsDifferentAccountConnected(a, profile("g-1")))
	assert.True(t, p.IsDifferentAccountConnected(a, profile("g-2")))
}

func TestAssignOrUpdateFields_InvalidProfileLeavesSlot(t *testing.T) {
	p := google.New(providers.Config{})
	a := account.New()
	require.NoError(t, p.AssignOrUpdateFields(a, profile("g-1")))

	bad := profile("g-1")
	bad["email"] = []any{"x"}
	assert.ErrorIs(t, p.AssignOrUpdateFields(a, bad), providers.ErrProfileShape)
	assert.Equal(t, "ada@example.com", a.Credentials.Platforms.Google.Email)

	fresh := account.New()
	delete(bad, "email")
	bad["id"] = 12.0
	assert.ErrorIs(t, p.AssignOrUpdateFields(fresh, bad), providers.ErrProfileShape)
	assert.Nil(t, fresh.Credentials.Platforms.Google)
}

func TestFindAccountWithSameProviderIdentity_NotFound(t *testing.T) {
	p := google.New(providers.Config{})
	_, err := p.FindAccountWithSameProviderIdentity(context.Background(), memory.New(), profile("nobody"))
	assert.True(t, repository.IsNotFound(err))
}
