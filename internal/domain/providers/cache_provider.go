package providers

import "context"

// CacheProvider is the answer cache abstraction. Values are opaque bytes;
// callers own the serialization.
type CacheProvider interface {
	// Get returns the cached value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL in seconds.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
