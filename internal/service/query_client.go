package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
)

// QueryClient caches and deduplicates descriptor fetches by key.
// Successful payloads are cached until cleared; failures are not cached.
type QueryClient struct {
	logger *slog.Logger
	hash   func(fetch.Key) uint64

	mu       sync.Mutex
	cache    map[uint64]cacheEntry
	inflight map[uint64]*call
	wg       sync.WaitGroup
}

type cacheEntry struct {
	key     fetch.Key
	payload api.Payload
}

// call is one in-flight producer invocation shared by every waiter of its key.
type call struct {
	key     fetch.Key
	done    chan struct{}
	payload api.Payload
	err     error
}

// NewQueryClient creates an empty QueryClient.
func NewQueryClient(logger *slog.Logger) *QueryClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryClient{
		logger:   logger,
		hash:     fetch.Key.Hash,
		cache:    make(map[uint64]cacheEntry),
		inflight: make(map[uint64]*call),
	}
}

// Fetch returns the payload for d.
//
// A disabled descriptor returns fetch.ErrDisabled without invoking the producer.
// A cached key returns the cached payload. A key already in flight waits for that
// call. Otherwise the producer runs once, detached from ctx cancellation; if ctx
// ends first Fetch returns ctx.Err() while the producer runs to completion.
func (q *QueryClient) Fetch(ctx context.Context, d fetch.Descriptor) (api.Payload, error) {
	if !d.Enabled {
		return api.Payload{}, fetch.ErrDisabled
	}
	c, payload, hit := q.acquire(ctx, d)
	if hit {
		return payload, nil
	}
	return c.wait(ctx)
}

// acquire returns the cached payload for d, or the call producing it, starting
// one if none is in flight. The call is registered with Wait before acquire returns.
func (q *QueryClient) acquire(ctx context.Context, d fetch.Descriptor) (*call, api.Payload, bool) {
	h := q.hash(d.Key)

	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.cache[h]; ok && e.key.Equal(d.Key) {
		q.logger.Debug("fetch cache hit", "op", d.Key.Op(), "need", d.Name, "key", d.Key.String())
		return nil, e.payload, true
	}
	if c, ok := q.inflight[h]; ok && c.key.Equal(d.Key) {
		return c, api.Payload{}, false
	}

	// A different key in flight under the same hash loses its index slot but
	// still completes for its own waiters.
	c := &call{key: d.Key, done: make(chan struct{})}
	q.inflight[h] = c
	q.wg.Add(1)
	go q.run(context.WithoutCancel(ctx), h, c, d)
	return c, api.Payload{}, false
}

func (c *call) wait(ctx context.Context) (api.Payload, error) {
	select {
	case <-c.done:
		return c.payload, c.err
	case <-ctx.Done():
		return api.Payload{}, ctx.Err()
	}
}

func (q *QueryClient) run(ctx context.Context, h uint64, c *call, d fetch.Descriptor) {
	defer q.wg.Done()

	q.logger.Debug("fetch start", "op", d.Key.Op(), "need", d.Name, "key", d.Key.String())
	c.payload, c.err = d.Producer(ctx)

	q.mu.Lock()
	if q.inflight[h] == c {
		delete(q.inflight, h)
	}
	if c.err == nil {
		q.cache[h] = cacheEntry{key: c.key, payload: c.payload}
	}
	q.mu.Unlock()

	if c.err != nil {
		q.logger.Debug("fetch failed", "op", d.Key.Op(), "need", d.Name, "key", d.Key.String(), "error", c.err)
	}
	close(c.done)
}

// Cached returns the cached payload for key, if any.
func (q *QueryClient) Cached(key fetch.Key) (api.Payload, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.cache[q.hash(key)]
	if !ok || !e.key.Equal(key) {
		return api.Payload{}, false
	}
	return e.payload, true
}

// Clear drops every cached payload. In-flight calls are not affected.
func (q *QueryClient) Clear() {
	q.mu.Lock()
	q.cache = make(map[uint64]cacheEntry)
	q.mu.Unlock()
}

// Wait blocks until every in-flight producer has returned.
func (q *QueryClient) Wait() {
	q.wg.Wait()
}
