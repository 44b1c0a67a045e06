package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store when the given id has no entry.
var ErrNotFound = errors.New("session: entry not found")

// Store is a generic key-value backend for session payloads. The key
// is the session id and the value is the encoded session data.
type Store interface {
	// Start initializes the store.
	Start(ctx context.Context) error

	// Stop tears down resources.
	Stop(ctx context.Context) error

	// Delete removes the entry for the given id.
	Delete(ctx context.Context, id string) error

	// Exists returns true if the id is present in the store.
	Exists(ctx context.Context, id string) (bool, error)

	// Get retrieves the raw value for the given id, or ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// Set saves or updates the value for the given id, renewing its
	// age.
	Set(ctx context.Context, id string, val []byte) error

	// Touch renews the entry's age without changing its value,
	// implementing sliding expiration. Returns ErrNotFound if the id
	// does not exist.
	Touch(ctx context.Context, id string) error

	// Purge removes entries older than maxAge. Backends with native
	// expiration may treat it as a no-op.
	Purge(ctx context.Context, maxAge time.Duration) error
}
