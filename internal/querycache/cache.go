// Package querycache is the portal's remote resource cache.
//
// Entries are keyed by visitor scope and resource path. At most one fetch per
// key and generation is in flight; readers that arrive while it runs share it.
// Invalidation keeps the previous data around for stale-while-revalidate
// rendering but forces the next read to fetch again.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/studioleflow/portal/internal/metrics"
)

// Key identifies one cached resource for one visitor
type Key struct {
	Scope string
	Path  string
}

func (k Key) String() string { return k.Scope + "|" + k.Path }

// Fetcher loads a resource from the backend
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	hasValue  bool
	err       error
	fetchedAt time.Time
	stale     bool
	gen       uint64
	// results of generations below floor are discarded
	floor uint64
}

// Options configure a Cache. Zero values get defaults.
type Options struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// Cache is safe for concurrent use
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group

	staleTime    time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func New(opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 30 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		entries:      make(map[Key]*entry),
		staleTime:    opts.StaleTime,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		log:          opts.Logger,
	}
}

type snapshot struct {
	value    any
	hasValue bool
	err      error
	done     bool
}

// query serves a fresh entry or joins/starts a fetch and waits for it.
// wait <= 0 blocks until the fetch finishes or ctx ends.
func (c *Cache) query(ctx context.Context, key Key, wait time.Duration, fetch Fetcher) snapshot {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if c.freshLocked(e) {
		snap := snapshot{value: e.value, hasValue: true, done: true}
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return snap
	}
	prev := snapshot{value: e.value, hasValue: e.hasValue}
	gen := e.gen
	c.mu.Unlock()

	flightKey := key.String() + "#" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		// The fetch outlives the request that started it; other readers may be waiting.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		start := c.now()
		v, err := fetch(fctx)
		metrics.RecordFetch(resourceLabel(key.Path), err, c.now().Sub(start))
		c.store(key, gen, v, err)
		if err != nil {
			c.log.Warn("resource fetch failed", zap.String("path", key.Path), zap.Error(err))
		}
		return v, err
	})

	var timeout <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			metrics.CacheLookups.WithLabelValues("failed").Inc()
			prev.err = res.Err
			prev.done = true
			return prev
		}
		metrics.CacheLookups.WithLabelValues("fetched").Inc()
		return snapshot{value: res.Val, hasValue: true, done: true}
	case <-timeout:
	case <-ctx.Done():
	}
	metrics.CacheLookups.WithLabelValues("loading").Inc()
	return prev
}

func (c *Cache) freshLocked(e *entry) bool {
	return e.hasValue && e.err == nil && !e.stale && c.now().Sub(e.fetchedAt) < c.staleTime
}

// store records a completed fetch. A result from before an invalidation never
// replaces existing data and never makes the entry fresh.
func (c *Cache) store(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{gen: gen}
		c.entries[key] = e
	}
	if gen < e.floor {
		return
	}
	superseded := e.gen != gen
	if err != nil {
		if !superseded {
			e.err = err
			e.stale = true
		}
		return
	}
	if superseded {
		if !e.hasValue {
			e.value = v
			e.hasValue = true
			e.stale = true
		}
		return
	}
	e.value = v
	e.hasValue = true
	e.err = nil
	e.fetchedAt = c.now()
	e.stale = false
}

// Prime seeds a fresh entry without fetching
func (c *Cache) Prime(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.value = v
	e.hasValue = true
	e.err = nil
	e.fetchedAt = c.now()
	e.stale = false
}

// Invalidate marks one key stale; the next read fetches again
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		invalidateLocked(e)
	}
	c.log.Debug("invalidated", zap.String("scope", key.Scope), zap.String("path", key.Path))
}

// InvalidateScope marks every key of one visitor stale (login, logout)
func (c *Cache) InvalidateScope(scope string) {
	c.invalidateWhere(func(k Key) bool { return k.Scope == scope })
}

// InvalidatePath marks a resource stale for every visitor (webhooks)
func (c *Cache) InvalidatePath(path string) {
	c.invalidateWhere(func(k Key) bool { return k.Path == path })
}

func (c *Cache) invalidateWhere(match func(Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if match(k) {
			invalidateLocked(e)
		}
	}
}

// Forget drops every value of one visitor, including fetches still in flight.
// Used when the account behind the scope changes so nothing stale is shown.
func (c *Cache) Forget(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Scope != scope {
			continue
		}
		e.gen++
		e.floor = e.gen
		e.value, e.hasValue, e.err = nil, false, nil
		e.stale = true
	}
}

func invalidateLocked(e *entry) {
	e.stale = true
	e.gen++
}

// Sweep drops entries not refreshed within maxAge and returns how many went.
// Idle visitors would otherwise keep their entries forever.
func (c *Cache) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-maxAge)
	n := 0
	for k, e := range c.entries {
		if e.fetchedAt.Before(cutoff) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len reports the number of entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// resourceLabel strips trailing ids so metric labels stay bounded
func resourceLabel(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	if _, err := strconv.ParseInt(path[i+1:], 10, 64); err == nil {
		return path[:i] + "/:id"
	}
	return path
}
