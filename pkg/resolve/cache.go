package resolve

import (
	"context"
	"sync"
	"time"
)

// cacheEntry is one fetched (or in-flight) chain payload. The ready channel
// is closed once payload/err/capturedAt are final; readers must observe
// the close (or hold the cache lock) before touching the other fields.
type cacheEntry struct {
	ready      chan struct{}
	payload    []byte
	err        error
	capturedAt time.Time
}

func (e *cacheEntry) done() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// chainCache holds fetched payloads keyed by chain ID and guarantees
// at-most-one concurrent fetch per key. The mutex covers only map
// lookup-or-register; fetches run outside it, so unrelated chains never
// block each other.
type chainCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func newChainCache() *chainCache {
	return &chainCache{entries: make(map[string]*cacheEntry)}
}

// resolve returns the payload for key, reusing a completed entry when the
// policy permits, joining an in-flight fetch when one exists, and starting
// a new fetch otherwise.
//
// The fetch runs in its own goroutine with cancellation detached from the
// registering caller: a caller whose ctx ends mid-fetch gets ctx.Err() and
// nothing else; the fetch still completes for the other waiters. Failed
// fetches are not cached.
func (c *chainCache) resolve(ctx context.Context, key string, policy Policy, now func() time.Time, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if e := c.entries[key]; e != nil {
		if !e.done() {
			// In-flight: coalesce into the outstanding fetch regardless
			// of policy. Joining is not reuse of a cached value.
			c.mu.Unlock()
			return e.wait(ctx)
		}
		if e.err == nil && policy.AllowsReuse(now(), e.capturedAt) {
			payload := e.payload
			c.mu.Unlock()
			return payload, nil
		}
		// Completed but stale under this policy: replace it below.
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	go func() {
		payload, err := fetch(context.WithoutCancel(ctx))
		c.mu.Lock()
		e.payload = payload
		e.err = err
		e.capturedAt = now()
		if err != nil {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		close(e.ready)
	}()

	return e.wait(ctx)
}

// wait blocks until the entry completes or ctx ends.
func (e *cacheEntry) wait(ctx context.Context) ([]byte, error) {
	select {
	case <-e.ready:
		if e.err != nil {
			return nil, e.err
		}
		return e.payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
