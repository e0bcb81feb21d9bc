package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, access, refresh time.Duration) *Issuer {
	t.Helper()
	i, err := NewIssuer("clickauth-test", "s3cr3t-s3cr3t-s3cr3t", access, refresh)
	require.NoError(t, err)
	return i
}

func TestGeneratePair_Verify(t *testing.T) {
	i := newIssuer(t, time.Minute, time.Hour)
	p, err := i.GeneratePair("acc-1")
	require.NoError(t, err)
	assert.NotEqual(t, p.AccessToken, p.RefreshToken)

	c, err := i.VerifyKind(p.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", c.AccountID)

	c, err = i.VerifyKind(p.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", c.AccountID)
	assert.True(t, c.ExpiresAt.After(time.Now().Add(50*time.Minute)))
}

func TestGenerate_TokensAreUnique(t *testing.T) {
	i := newIssuer(t, time.Minute, time.Hour)
	a, err := i.GenerateRefreshToken("acc-1")
	require.NoError(t, err)
	b, err := i.GenerateRefreshToken("acc-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_ExpiredIsDistinctKind(t *testing.T) {
	i := newIssuer(t, time.Millisecond, time.Hour)
	tok, err := i.GenerateAccessToken("acc-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = i.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialExpired)
	assert.NotErrorIs(t, err, ErrCredentialInvalid)
}

func TestVerify_TamperedIsInvalid(t *testing.T) {
	i := newIssuer(t, time.Minute, time.Hour)
	tok, err := i.GenerateAccessToken("acc-1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = i.Verify(tampered)
	assert.ErrorIs(t, err, ErrCredentialInvalid)

	_, err = i.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestVerify_OtherSecretIsInvalid(t *testing.T) {
	a := newIssuer(t, time.Minute, time.Hour)
	b, err := NewIssuer("clickauth-test", "different", time.Minute, time.Hour)
	require.NoError(t, err)

	tok, err := a.GenerateAccessToken("acc-1")
	require.NoError(t, err)
	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestVerifyKind_WrongKind(t *testing.T) {
	i := newIssuer(t, time.Minute, time.Hour)
	tok, err := i.GenerateAccessToken("acc-1")
	require.NoError(t, err)
	_, err = i.VerifyKind(tok, KindRefresh)
	assert.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("x", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = NewIssuer("x", "s", 0, time.Hour)
	assert.Error(t, err)
}
