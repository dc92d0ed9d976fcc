package controllers

import (
	"context"
	"sync"
	"time"
)

// RequestDeduplicator remembers keys for a short while so that a repeated
// submission of the same request can be refused.
type RequestDeduplicator struct {
	locks sync.Map
	now   func() time.Time
}

func NewRequestDeduplicator() *RequestDeduplicator {
	return &RequestDeduplicator{now: time.Now}
}

// TryAcquire reports false while key is still held.
func (d *RequestDeduplicator) TryAcquire(key string, ttl time.Duration) bool {
	now := d.now()
	expiry := now.Add(ttl)

	for {
		val, loaded := d.locks.LoadOrStore(key, expiry)
		if !loaded {
			return true
		}
		held := val.(time.Time)
		if now.Before(held) {
			return false
		}
		if d.locks.CompareAndSwap(key, held, expiry) {
			return true
		}
	}
}

// Release drops key, typically after the guarded request failed.
func (d *RequestDeduplicator) Release(key string) {
	d.locks.Delete(key)
}

func (d *RequestDeduplicator) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := d.now()
			d.locks.Range(func(key, value interface{}) bool {
				if now.After(value.(time.Time)) {
					d.locks.Delete(key)
				}
				return true
			})
		}
	}
}
