package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

// Cache is an in-memory key/value store with per-entry expiry. Expiry is
// checked lazily on Get; there is no background sweep. Safe for concurrent
// readers and writers.
type Cache[V any] struct {
	mu    sync.Mutex
	store map[string]entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{store: make(map[string]entry[V])}
}

// Get returns the value for key. An entry whose expiry has passed is evicted
// and reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.store[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.store, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = entry[V]{expiresAt: time.Now().Add(ttl), value: value}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]entry[V])
}

// Len returns the number of stored entries, including any not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Key derives a stable cache key from a logical operation name and its
// arguments. The key is the hex SHA-256 of the canonical JSON form, so
// identical logical calls always produce identical keys; encoding/json
// serializes map keys in sorted order, making the key independent of the
// ordering of any unordered input.
func Key(op string, args ...any) string {
	payload := struct {
		Fn   string `json:"fn"`
		Args []any  `json:"args"`
	}{Fn: op, Args: args}

	data, err := json.Marshal(payload)
	if err != nil {
		// Fall back to the raw representation for unmarshalable arguments.
		data = []byte(fmt.Sprintf("%s:%v", op, args))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
