// Package storage defines the key-value port behind which all durable
// local state (token pair, cached user, cart) is persisted. The same
// cart and session logic runs against the file store in the CLI and the
// in-memory store in tests.
package storage

import "errors"

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string-keyed blob store. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the stored blob, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores the blob, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Well-known keys used by the session store and the cart store.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyCart         = "cart"
)
