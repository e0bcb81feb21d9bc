package standard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/security/password"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
)

func newService(t *testing.T) (standard.Service, *memory.Store) {
	t.Helper()
	issuer, err := jwtx.NewIssuer("clickauth", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	repo := memory.New()
	cheap := password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}
	return standard.NewService(standard.Deps{Repo: repo, Issuer: issuer, Params: cheap}), repo
}

func codeOf(t *testing.T, err error) standard.Code {
	t.Helper()
	var se *standard.Error
	require.True(t, errors.As(err, &se), "expected *standard.Error, got %v", err)
	return se.Code
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	a, pair, err := svc.SignUp(ctx, " Ada@Example.com ", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "ada@example.com", a.Credentials.Standard.Email)
	assert.NotEqual(t, "hunter2", a.Credentials.Standard.PasswordHash)

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.Credentials.RefreshToken)

	b, pair2, err := svc.SignIn(ctx, "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, pair.RefreshToken, pair2.RefreshToken)
}

func TestSignUpErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "", "x")
	assert.Equal(t, standard.SignUpInvalidEmail, codeOf(t, err))
	_, _, err = svc.SignUp(ctx, "not-an-email", "x")
	assert.Equal(t, standard.SignUpInvalidEmail, codeOf(t, err))
	_, _, err = svc.SignUp(ctx, "a@b.c", "")
	assert.Equal(t, standard.SignUpInvalidPassword, codeOf(t, err))

	_, _, err = svc.SignUp(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	_, _, err = svc.SignUp(ctx, "A@B.C", "pw")
	assert.Equal(t, standard.SignUpUserAlreadyExists, codeOf(t, err))
}

func TestSignInErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.SignIn(ctx, "", "")
	assert.Equal(t, standard.EmptyFields, codeOf(t, err))
	_, _, err = svc.SignIn(ctx, "ghost@example.com", "pw")
	assert.Equal(t, standard.SignInNoUserWithGivenEmail, codeOf(t, err))

	_, _, err = svc.SignUp(ctx, "me@example.com", "right")
	require.NoError(t, err)
	_, _, err = svc.SignIn(ctx, "me@example.com", "wrong")
	assert.Equal(t, standard.SignInWrongPassword, codeOf(t, err))
}
