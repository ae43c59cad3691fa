package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/model"
	"shopfront/internal/storage"
)

func TestSetTokensAndHydrate(t *testing.T) {
	kv := storage.NewMemStore()

	s := New(kv)
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.SetTokens("access-1", "refresh-1"))
	require.NoError(t, s.SetUser(&model.User{ID: "7", Username: "jane", Role: model.RoleBuyer}))
	assert.True(t, s.LoggedIn())

	// A new store over the same KV picks up the persisted session.
	reloaded := New(kv)
	assert.Equal(t, "access-1", reloaded.AccessToken())
	assert.Equal(t, "refresh-1", reloaded.RefreshToken())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "jane", reloaded.User().Username)
}

func TestReplaceAccessKeepsRefresh(t *testing.T) {
	s := New(storage.NewMemStore())
	require.NoError(t, s.SetTokens("old-access", "refresh-1"))

	require.NoError(t, s.ReplaceAccess("new-access"))

	assert.Equal(t, "new-access", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())
}

func TestClear(t *testing.T) {
	kv := storage.NewMemStore()
	s := New(kv)
	require.NoError(t, s.SetTokens("a", "r"))
	require.NoError(t, s.SetUser(&model.User{Username: "jane"}))

	require.NoError(t, s.Clear())

	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.AccessToken())
	assert.Nil(t, s.User())
	assert.False(t, New(kv).LoggedIn())
}

func TestUserReturnsCopy(t *testing.T) {
	s := New(storage.NewMemStore())
	require.NoError(t, s.SetUser(&model.User{Username: "jane"}))

	u := s.User()
	u.Username = "mallory"

	assert.Equal(t, "jane", s.User().Username)
}

func TestAccessExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s := New(storage.NewMemStore())
	require.NoError(t, s.SetTokens(signed, "refresh-1"))

	got, ok := s.AccessExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestAccessExpiryNoToken(t *testing.T) {
	s := New(storage.NewMemStore())
	_, ok := s.AccessExpiry()
	assert.False(t, ok)
}

func TestAccessExpiryOpaqueToken(t *testing.T) {
	s := New(storage.NewMemStore())
	require.NoError(t, s.SetTokens("not-a-jwt", "refresh-1"))
	_, ok := s.AccessExpiry()
	assert.False(t, ok)
}
