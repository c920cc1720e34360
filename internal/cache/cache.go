// Package cache provides the shared key-value store used for short-lived
// OAuth state. The interface is deliberately narrow so single-instance
// deployments can use the in-memory store while multi-instance deployments
// swap in a networked cache.
package cache

import "time"

// Store is a key-value store with per-key TTL. All methods are safe for
// concurrent use.
type Store interface {
	// Put stores value under key, replacing any existing entry. The entry
	// expires after ttl.
	Put(key, value string, ttl time.Duration)
	// Get returns the value for key. Expired or absent keys report ok=false.
	Get(key string) (value string, ok bool)
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)
}
