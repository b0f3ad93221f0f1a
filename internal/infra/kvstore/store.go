// Package kvstore provides the persistent key-value store the offline queue
// serializes into. The contract is deliberately small — string keys to string
// values, synchronous, surviving process restarts — because it is the only
// storage primitive the queue is allowed to assume.
package kvstore

// Store is a durable string-to-string store.
//
// The store may be shared by more than one process (the original deployment
// had multiple browser tabs over one localStorage). No cross-process locking
// is provided; callers assume a single writer at a time.
type Store interface {
	// Get returns the value for key. The second result is false when the
	// key is absent; absence is not an error.
	Get(key string) (string, bool, error)

	// Set writes value under key, replacing any previous value. A failed
	// Set (quota, I/O) must leave the previous value intact.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}
