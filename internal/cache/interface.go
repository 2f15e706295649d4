// Package cache holds API responses between requests; the only cached value
// in practice is the public actor roster, invalidated whenever the roster
// changes. Two backends: in-process memory (default) and Redis for
// multi-instance deployments.
package cache

import "time"

// Cache is the backend contract. Set applies the backend's default TTL;
// SetWithTTL overrides it per entry. Expired or missing keys read as absent.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
}
