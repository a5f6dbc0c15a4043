package gateway

import (
	"sync"
	"time"
)

// resultCache holds one fetched collection with a TTL. Each collection gets
// its own cache instance owned by the gateway; there is no process-global
// cache state.
//
// The mutex doubles as a single-flight guard: a fetch that misses holds the
// lock while loading, so concurrent callers wait for the one load instead of
// issuing their own.
type resultCache struct {
	mu          sync.Mutex
	value       interface{}
	fingerprint string
	expiresAt   time.Time
	ttl         time.Duration
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl}
}

// fetch returns the cached value when fresh, otherwise runs load and caches
// its result. The fingerprint is advisory, used only for hit logging.
func (c *resultCache) fetch(load func() (interface{}, string, error)) (interface{}, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && time.Now().Before(c.expiresAt) {
		return c.value, true, nil
	}

	value, fingerprint, err := load()
	if err != nil {
		return nil, false, err
	}

	c.value = value
	c.fingerprint = fingerprint
	c.expiresAt = time.Now().Add(c.ttl)

	return value, false, nil
}

// invalidate drops the cached value.
func (c *resultCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.fingerprint = ""
	c.expiresAt = time.Time{}
}

// currentFingerprint returns the advisory fingerprint of the cached value,
// or empty when nothing is cached.
func (c *resultCache) currentFingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil || !time.Now().Before(c.expiresAt) {
		return ""
	}
	return c.fingerprint
}
