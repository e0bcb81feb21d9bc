package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/auth/session"
	"github.com/dropDatabas3/clickauth/internal/domain/account"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
)

type fixture struct {
	svc    session.Service
	repo   *memory.Store
	issuer *jwtx.Issuer
	acc    *account.Account
	pair   jwtx.Pair
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	issuer, err := jwtx.NewIssuer("clickauth", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	repo := memory.New()

	a := account.New()
	pair, err := issuer.GeneratePair(a.ID)
	require.NoError(t, err)
	a.SetRefreshToken(pair.RefreshToken)
	require.NoError(t, repo.Save(ctx, a))

	return &fixture{
		svc:    session.NewService(session.Deps{Repo: repo, Issuer: issuer}),
		repo:   repo,
		issuer: issuer,
		acc:    a,
		pair:   pair,
	}
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", session.StripBearer("Bearer abc"))
	assert.Equal(t, "abc", session.StripBearer("bearer  abc "))
	assert.Equal(t, "abc", session.StripBearer("abc"))
	assert.Equal(t, "", session.StripBearer(""))
}

func TestRefreshRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, next, err := f.svc.Refresh(ctx, "Bearer "+f.pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.acc.ID, a.ID)
	assert.NotEqual(t, f.pair.RefreshToken, next.RefreshToken)

	// el refresh anterior quedó invalidado por la rotación
	_, _, err = f.svc.Refresh(ctx, f.pair.RefreshToken)
	assert.ErrorIs(t, err, session.ErrRefreshRevoked)

	_, _, err = f.svc.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Refresh(context.Background(), f.pair.AccessToken)
	assert.ErrorIs(t, err, jwtx.ErrCredentialInvalid)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Logout(ctx, f.pair.RefreshToken))
	stored, err := f.repo.FindByID(ctx, f.acc.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Credentials.RefreshToken)

	_, _, err = f.svc.Refresh(ctx, f.pair.RefreshToken)
	assert.ErrorIs(t, err, session.ErrRefreshRevoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, ""), session.ErrMissingToken)
}

func TestLogout_RotatedTokenKeepsLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, next, err := f.svc.Refresh(ctx, f.pair.RefreshToken)
	require.NoError(t, err)

	// el refresh viejo ya no es el vigente: no debe cerrar la sesión nueva
	assert.ErrorIs(t, f.svc.Logout(ctx, f.pair.RefreshToken), session.ErrRefreshRevoked)
	stored, err := f.repo.FindByID(ctx, f.acc.ID)
	require.NoError(t, err)
	assert.Equal(t, next.RefreshToken, stored.Credentials.RefreshToken)

	_, _, err = f.svc.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Authenticate(ctx, f.pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.acc.ID, a.ID)

	_, err = f.svc.Authenticate(ctx, f.pair.RefreshToken)
	assert.ErrorIs(t, err, jwtx.ErrCredentialInvalid)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, jwtx.ErrCredentialInvalid)

	ghost, err := f.issuer.GenerateAccessToken("ghost")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, jwtx.ErrCredentialInvalid)
}
