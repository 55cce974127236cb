// Package kvstore backs the HTTP API with a string-keyed value store, the
// same contract the hosted kv table exposed: get/set/del plus prefix scans
// for per-user collections.
package kvstore

import "context"

// Entry pairs a key with its stored value.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the server-side kv contract. Get reports found=false for missing
// keys without an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
