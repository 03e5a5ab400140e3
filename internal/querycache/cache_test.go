package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*Cache, *clock) {
	clk := &clock{now: time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)}
	return New(Options{StaleTime: time.Minute, FetchTimeout: 5 * time.Second, Now: clk.Now}), clk
}

var songsKey = Key{Scope: "visitor-1", Path: "/api/user-songs"}

func TestConcurrentReadsShareOneFetch(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]int, error) {
		calls.Add(1)
		<-release
		return []int{1, 2}, nil
	}

	var wg sync.WaitGroup
	results := make([]Result[[]int], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = LoadList(context.Background(), c, songsKey, 0, fetch)
		}(i)
	}
	// let every reader join the flight before releasing it
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, StatusPopulated, r.Status)
		assert.Equal(t, []int{1, 2}, r.Data)
	}
}

func TestFreshEntryServedWithoutFetch(t *testing.T) {
	c, clk := newTestCache()
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]int, error) {
		calls.Add(1)
		return []int{int(calls.Load())}, nil
	}
	ctx := context.Background()

	LoadList(ctx, c, songsKey, 0, fetch)
	r := LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []int{1}, r.Data)

	clk.Advance(2 * time.Minute)
	r = LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []int{2}, r.Data)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	server := []int{10, 11, 12}
	fetch := func(ctx context.Context) ([]int, error) {
		return append([]int(nil), server...), nil
	}

	r := LoadList(ctx, c, songsKey, 0, fetch)
	require.Equal(t, []int{10, 11, 12}, r.Data)

	server = []int{10, 12} // song 11 deleted server-side
	c.Invalidate(songsKey)

	r = LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, StatusPopulated, r.Status)
	assert.NotContains(t, r.Data, 11)
}

func TestEmptyList(t *testing.T) {
	c, _ := newTestCache()
	r := LoadList(context.Background(), c, songsKey, 0, func(ctx context.Context) ([]int, error) {
		return nil, nil
	})
	assert.Equal(t, StatusEmpty, r.Status)
	assert.True(t, r.IsEmpty())
}

func TestLoadingKeepsPreviousData(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	c.Prime(songsKey, []int{1})
	c.Invalidate(songsKey)

	release := make(chan struct{})
	slow := func(ctx context.Context) ([]int, error) {
		<-release
		return []int{1, 2}, nil
	}

	r := LoadList(ctx, c, songsKey, 10*time.Millisecond, slow)
	assert.Equal(t, StatusLoading, r.Status)
	assert.True(t, r.HasData)
	assert.Equal(t, []int{1}, r.Data)

	close(release)
	r = LoadList(ctx, c, songsKey, 0, slow)
	assert.Equal(t, StatusPopulated, r.Status)
	assert.Equal(t, []int{1, 2}, r.Data)
}

func TestFailureIsDistinctFromLoading(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	boom := errors.New("backend down")

	r := LoadList(ctx, c, songsKey, 0, func(ctx context.Context) ([]int, error) {
		return nil, boom
	})
	assert.Equal(t, StatusFailed, r.Status)
	assert.ErrorIs(t, r.Err, boom)
	assert.False(t, r.HasData)

	// a retry fetches again and recovers
	r = LoadList(ctx, c, songsKey, 0, func(ctx context.Context) ([]int, error) {
		return []int{5}, nil
	})
	assert.Equal(t, StatusPopulated, r.Status)
}

func TestInvalidationDuringFlightLeavesEntryStale(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
			return []int{1, 2, 3}, nil
		}
		return []int{1, 3}, nil
	}

	r := LoadList(ctx, c, songsKey, 5*time.Millisecond, fetch)
	require.Equal(t, StatusLoading, r.Status)

	c.Invalidate(songsKey)
	r = LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, []int{1, 3}, r.Data)

	close(release)
	time.Sleep(20 * time.Millisecond)

	// the late pre-invalidation result must not replace the newer list
	v, _ := Peek[[]int](c, songsKey)
	assert.Equal(t, []int{1, 3}, v)
	r = LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, []int{1, 3}, r.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScopesAreIsolated(t *testing.T) {
	c, _ := newTestCache()
	a := Key{Scope: "a", Path: "/api/user/invoices"}
	b := Key{Scope: "b", Path: "/api/user/invoices"}
	other := Key{Scope: "a", Path: "/api/user/projects"}
	c.Prime(a, "A")
	c.Prime(b, "B")
	c.Prime(other, "P")

	c.InvalidatePath("/api/user/invoices")
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "new", nil
	}
	Load(context.Background(), c, a, 0, fetch)
	Load(context.Background(), c, b, 0, fetch)
	r := Load(context.Background(), c, other, 0, fetch)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "P", r.Data)

	c.InvalidateScope("a")
	Load(context.Background(), c, other, 0, fetch)
	assert.Equal(t, int32(3), calls.Load())
}

func TestForgetDiscardsDataAndFlights(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]int, error) {
		if calls.Add(1) == 1 {
			<-release
			return []int{1}, nil
		}
		return []int{2}, nil
	}

	r := LoadList(ctx, c, songsKey, 5*time.Millisecond, fetch)
	require.Equal(t, StatusLoading, r.Status)
	c.Forget(songsKey.Scope)

	close(release)
	time.Sleep(20 * time.Millisecond)
	_, ok := Peek[[]int](c, songsKey)
	assert.False(t, ok, "a fetch from the previous account is dropped")

	r = LoadList(ctx, c, songsKey, 0, fetch)
	assert.Equal(t, []int{2}, r.Data)
}

func TestSweep(t *testing.T) {
	c, clk := newTestCache()
	c.Prime(songsKey, []int{1})
	clk.Advance(time.Hour)
	c.Prime(Key{Scope: "x", Path: "/api/user"}, "u")

	assert.Equal(t, 1, c.Sweep(30*time.Minute))
	assert.Equal(t, 1, c.Len())
}

func TestResourceLabel(t *testing.T) {
	assert.Equal(t, "/api/messages/conversation/:id", resourceLabel("/api/messages/conversation/42"))
	assert.Equal(t, "/api/user-songs", resourceLabel("/api/user-songs"))
}
