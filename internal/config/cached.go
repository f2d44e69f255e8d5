package config

import (
	"sync"
	"time"
)

// Cached holds a value computed on demand and recomputed once it is older than TTL.
// A zero TTL never expires.
type Cached[T any] struct {
	TTL     time.Duration
	Compute func() (T, error)
	Now     func() time.Time

	mu         sync.Mutex
	value      T
	computedAt time.Time
	valid      bool
}

func NewCached[T any](ttl time.Duration, compute func() (T, error)) *Cached[T] {
	return &Cached[T]{TTL: ttl, Compute: compute, Now: time.Now}
}

// Get returns the cached value, recomputing it when stale. A failed recompute
// keeps the previous value invalid so the next call retries.
func (c *Cached[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if c.valid && (c.TTL == 0 || now.Sub(c.computedAt) < c.TTL) {
		return c.value, nil
	}

	v, err := c.Compute()
	if err != nil {
		c.valid = false
		var zero T

		return zero, err
	}

	c.value, c.computedAt, c.valid = v, now, true

	return v, nil
}

// Invalidate forces the next Get to recompute.
func (c *Cached[T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
