package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFManager(t *testing.T) {
	m := NewCSRFManager(testSecret)

	token, err := m.Token("sid-1", ScopeAuthenticate)
	require.NoError(t, err)

	assert.True(t, m.Valid("sid-1", ScopeAuthenticate, token))
	assert.False(t, m.Valid("sid-2", ScopeAuthenticate, token), "bound to session")
	assert.False(t, m.Valid("sid-1", "other", token), "bound to scope")
	assert.False(t, m.Valid("sid-1", ScopeAuthenticate, ""))
	assert.False(t, m.Valid("", ScopeAuthenticate, token))
	assert.False(t, NewCSRFManager("another-secret-xx").Valid("sid-1", ScopeAuthenticate, token))
	assert.False(t, m.Valid("sid-1", ScopeAuthenticate, token+"x"))
}

func TestCSRFManager_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewCSRFManager(testSecret)
	m.now = func() time.Time { return now }

	token, err := m.Token("sid-1", ScopeAuthenticate)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	assert.True(t, m.Valid("sid-1", ScopeAuthenticate, token))

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Valid("sid-1", ScopeAuthenticate, token))
}

func TestCSRFManager_RequiresSession(t *testing.T) {
	_, err := NewCSRFManager(testSecret).Token("", ScopeAuthenticate)
	assert.Error(t, err)
}
