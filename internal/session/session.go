// Package session owns the process-wide token state: the access/refresh
// pair and the cached user profile. It is constructed explicitly and
// injected (no ambient globals) so tests can run it against an
// in-memory store.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopfront/internal/model"
	"shopfront/internal/storage"
)

// Store holds the current authentication state, persisted write-through
// to the key-value store and hydrated from it at construction.
//
// Invariant: the access and refresh tokens are set and cleared together
// as a pair; only ReplaceAccess (the refresh protocol) touches one
// without the other.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	access  string
	refresh string
	user    *model.User
}

// New hydrates a Store from the key-value store. Missing keys simply
// leave the session logged out.
func New(kv storage.KV) *Store {
	s := &Store{kv: kv}
	if b, err := kv.Get(storage.KeyAccessToken); err == nil {
		s.access = string(b)
	}
	if b, err := kv.Get(storage.KeyRefreshToken); err == nil {
		s.refresh = string(b)
	}
	if b, err := kv.Get(storage.KeyUser); err == nil {
		var u model.User
		if err := json.Unmarshal(b, &u); err == nil {
			s.user = &u
		}
	}
	return s
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// User returns the cached profile, or nil.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// LoggedIn reports whether a token pair is present.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != "" && s.refresh != ""
}

// SetTokens stores a new access/refresh pair.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(storage.KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	if err := s.kv.Set(storage.KeyRefreshToken, []byte(refresh)); err != nil {
		return err
	}
	s.access, s.refresh = access, refresh
	return nil
}

// ReplaceAccess swaps in a fresh access token, leaving the refresh
// token unchanged. Only the refresh protocol calls this.
func (s *Store) ReplaceAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(storage.KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	s.access = access
	return nil
}

// SetUser caches the profile record.
func (s *Store) SetUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.kv.Set(storage.KeyUser, b); err != nil {
		return err
	}
	cp := *u
	s.user = &cp
	return nil
}

// Clear wipes tokens and the cached user. Used on logout and on
// unrecoverable 401s.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, k := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := s.kv.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	s.access, s.refresh, s.user = "", "", nil
	return errors.Join(errs...)
}

// AccessExpiry parses the exp claim from the stored access token
// without verifying the signature (the client holds no signing key).
// Returns false when no token is stored or the claim is absent.
func (s *Store) AccessExpiry() (time.Time, bool) {
	tok := s.AccessToken()
	if tok == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
