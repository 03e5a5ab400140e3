package querycache

import (
	"context"
	"time"
)

// Status of a resource as seen by a view
type Status int

const (
	StatusLoading Status = iota
	StatusEmpty
	StatusPopulated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusPopulated:
		return "populated"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Result is a typed view of one cached resource.
// Data may be set while loading or failed: it is the last good value.
type Result[T any] struct {
	Status  Status
	Data    T
	HasData bool
	Err     error
}

func (r Result[T]) IsLoading() bool   { return r.Status == StatusLoading }
func (r Result[T]) IsEmpty() bool     { return r.Status == StatusEmpty }
func (r Result[T]) IsPopulated() bool { return r.Status == StatusPopulated }
func (r Result[T]) IsFailed() bool    { return r.Status == StatusFailed }

// Load reads one resource through the cache, waiting at most wait for a fetch
func Load[T any](ctx context.Context, c *Cache, key Key, wait time.Duration, fetch func(context.Context) (T, error)) Result[T] {
	snap := c.query(ctx, key, wait, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})

	var r Result[T]
	if snap.hasValue {
		if v, ok := snap.value.(T); ok {
			r.Data = v
			r.HasData = true
		}
	}
	switch {
	case !snap.done:
		r.Status = StatusLoading
	case snap.err != nil:
		r.Status = StatusFailed
		r.Err = snap.err
	default:
		r.Status = StatusPopulated
	}
	return r
}

// LoadList is Load for collections: an empty populated list becomes StatusEmpty
func LoadList[E any](ctx context.Context, c *Cache, key Key, wait time.Duration, fetch func(context.Context) ([]E, error)) Result[[]E] {
	r := Load(ctx, c, key, wait, fetch)
	if r.Status == StatusPopulated && len(r.Data) == 0 {
		r.Status = StatusEmpty
	}
	return r
}

// Map converts a result's data while keeping its status
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{Status: r.Status, HasData: r.HasData, Err: r.Err}
	if r.HasData {
		out.Data = fn(r.Data)
	}
	return out
}

// Peek returns the cached value for key without fetching
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}
