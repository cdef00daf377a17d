package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// TTL caches the result of fn per key. Concurrent misses for one key share a
// single fn call. Once an entry is older than ttl the stale value is still
// returned while a refresh runs in the background.
type TTL[T any] struct {
	ttl     time.Duration
	entries *xsync.Map[string, entry[T]]
	sfg     singleflight.Group
	now     func() time.Time
}

func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		ttl:     ttl,
		entries: xsync.NewMap[string, entry[T]](),
		now:     time.Now,
	}
}

func (c *TTL[T]) Get(key string, fn func() (T, error)) (T, error) {
	if c.ttl <= 0 {
		return c.fetch(key, fn)
	}

	e, ok := c.entries.Load(key)
	if ok {
		if c.now().Sub(e.fetchedAt) > c.ttl {
			go c.sfg.Do(key, func() (any, error) {
				return c.refresh(key, fn)
			})
		}
		return e.value, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		if e, ok := c.entries.Load(key); ok {
			return e, nil
		}
		return c.refresh(key, fn)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(entry[T]).value, nil
}

// refresh is shared by misses and background refreshes so that a caller
// joining either flight always gets an entry back.
func (c *TTL[T]) refresh(key string, fn func() (T, error)) (any, error) {
	res, err := fn()
	if err != nil {
		return nil, err
	}
	fresh := entry[T]{value: res, fetchedAt: c.now()}
	c.entries.Store(key, fresh)
	return fresh, nil
}

func (c *TTL[T]) Invalidate(key string) {
	c.entries.Delete(key)
}

// fetch collapses concurrent calls without storing anything.
func (c *TTL[T]) fetch(key string, fn func() (T, error)) (T, error) {
	v, err, _ := c.sfg.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
