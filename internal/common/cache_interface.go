package common

import "time"

// CacheInterface memoizes parsed reference data — registry snapshots and
// the consumption table — so repeated fleet lookups within a run decode
// each blob once instead of once per aircraft-month.
type CacheInterface interface {
	// Set stores a value under key for duration.
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value under key and whether it is present.
	Get(key string) (interface{}, bool)

	// GetOrSet returns the value under key, loading and storing it for
	// duration when absent. Nothing is stored when the loader fails.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)
}
