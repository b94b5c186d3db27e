package cache

import "time"

// Cache is a minimal key-value cache with a TTL per entry. Implementations
// are safe for concurrent use by request goroutines.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value with a TTL. A ttl <= 0 means the entry never
	// expires.
	Set(key K, value V, ttl time.Duration)

	// Delete removes a key if present.
	Delete(key K)

	// Len returns the number of non-expired entries currently stored.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired removes entries whose TTL has lapsed. Expiry is
	// otherwise lazy: expired entries linger until read or purged.
	PurgeExpired()
}
