package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKey, time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := svc.Issue("alice", []string{"ROLE_ADMIN", "ROLE_ORGANIZER"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_ORGANIZER"}, id.AuthorityNames())
}

func TestTokenExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer, err := NewTokenService(testKey, time.Hour, WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	validator, err := NewTokenService(testKey, time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue("alice", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenInvalid(t *testing.T) {
	svc, err := NewTokenService(testKey, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)

	token, _, err := svc.Issue("alice", []string{"ROLE_PARTICIPANT"})
	require.NoError(t, err)
	forged, _, err := other.Issue("alice", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	// Payload from the forged token with the original signature.
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"wrong key", forged},
		{"swapped payload", tampered},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenDropsUnknownAuthorities(t *testing.T) {
	svc, err := NewTokenService(testKey, time.Hour)
	require.NoError(t, err)

	token, _, err := svc.Issue("bob", []string{"ROLE_PARTICIPANT", "ROLE_SUPERUSER"})
	require.NoError(t, err)

	id, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_PARTICIPANT"}, id.AuthorityNames())
}

func TestNewTokenServiceRejectsShortKey(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(testKey, 0)
	assert.Error(t, err)
}
