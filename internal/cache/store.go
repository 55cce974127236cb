// Package cache is the local cache store: a string-keyed persistent store
// namespaced per user. A write to the authoritative in-memory project list
// is always mirrored here, so the cache is never older than the last
// locally-known-good state. Storage failures never escape this package.
package cache

// Store is a synchronous string-keyed value store, the local counterpart of
// the remote kv service. Keys iterate in insertion order where the backend
// supports it; callers must not rely on that order for correctness.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Keys() []string
}
