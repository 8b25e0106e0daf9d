package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermanow/dermanow/internal/identity"
)

const wallet = "0xd0000000000000000000000000000000000000d1"

func TestTokenManager_IssueParse(t *testing.T) {
	tm := NewTokenManager("test-secret", "dermanow", time.Hour)

	token, exp, err := tm.Issue(wallet, identity.RoleVendor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, claims.Address)
	assert.Equal(t, identity.RoleVendor, claims.Role)
}

func TestTokenManager_RoleLessSession(t *testing.T) {
	tm := NewTokenManager("test-secret", "dermanow", time.Hour)

	token, _, err := tm.Issue(wallet, identity.RoleNone)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleNone, claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("test-secret", "dermanow", time.Hour)

	token, _, err := tm.Issue(wallet, identity.RoleDonor)
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("another-secret", "dermanow", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewTokenManager("test-secret", "someone-else", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		later := NewTokenManager("test-secret", "dermanow", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
