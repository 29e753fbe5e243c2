package auth

import (
	"strings"
	"testing"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hashed, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hashed)

	assert.True(t, hasher.Verify("password", hashed))
	assert.False(t, hasher.Verify("Password", hashed))
	assert.False(t, hasher.Verify("", hashed))
}

func TestPasswordHasherSaltsEveryHash(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("secret")
	require.NoError(t, err)
	second, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("secret", first))
	assert.True(t, hasher.Verify("secret", second))
}

func TestPasswordHasherMalformedHash(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, hasher.Verify("password", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("password", ""))
}

func TestNewPasswordHasherCost(t *testing.T) {
	hasher, err := NewPasswordHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, hasher.cost)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	_, err = NewPasswordHasher(1)
	assert.Error(t, err)
}

func TestPasswordHasherRejectsLongPassword(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = hasher.Hash(strings.Repeat("a", MaxPasswordBytes+8))
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = hasher.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
