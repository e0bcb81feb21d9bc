package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the suite fast.
var cheap = Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16}

func TestHashVerify(t *testing.T) {
	h, err := Hash(cheap, "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, Verify("hunter2", h))
	assert.False(t, Verify("hunter3", h))
}

func TestHash_SaltsDiffer(t *testing.T) {
	a, err := Hash(cheap, "same")
	require.NoError(t, err)
	b, err := Hash(cheap, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHash_Empty(t *testing.T) {
	_, err := Hash(cheap, "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=19$m=x,t=1,p=1$AA$AA", "$argon2id$v=19$m=1024,t=1,p=1$!!$AA"} {
		assert.False(t, Verify("x", h), h)
	}
}
