package service

import (
	"context"
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
)

// Observer binds one data need to a QueryClient. It refetches only when the
// descriptor's key or readiness changes, and a result for a superseded key
// never replaces the state of the current one. The done channel is open
// exactly while the result is loading.
type Observer struct {
	qc *QueryClient

	mu      sync.Mutex
	bound   bool
	key     fetch.Key
	enabled bool
	gen     uint64
	result  fetch.Result
	done    chan struct{}
}

// NewObserver creates an idle observer.
func NewObserver(qc *QueryClient) *Observer {
	return &Observer{
		qc:     qc,
		result: fetch.Result{Status: fetch.StatusIdle},
		done:   closedChan(),
	}
}

// Update binds the observer to d. A disabled descriptor leaves the need idle.
func (o *Observer) Update(ctx context.Context, d fetch.Descriptor) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.bound && o.enabled == d.Enabled && o.key.Equal(d.Key) {
		return
	}

	o.bound = true
	o.key = d.Key
	o.enabled = d.Enabled
	o.gen++
	if !o.result.Settled() {
		close(o.done)
	}

	if !d.Enabled {
		o.result = fetch.Result{Key: d.Key, Status: fetch.StatusIdle}
		o.done = closedChan()
		return
	}

	c, payload, hit := o.qc.acquire(ctx, d)
	if hit {
		o.result = fetch.Result{Key: d.Key, Status: fetch.StatusSuccess, Data: payload}
		o.done = closedChan()
		return
	}

	o.result = fetch.Result{Key: d.Key, Status: fetch.StatusLoading}
	done := make(chan struct{})
	o.done = done
	gen := o.gen

	go func() {
		payload, err := c.wait(ctx)

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.gen != gen {
			return // superseded
		}
		if err != nil {
			o.result = fetch.Result{Key: d.Key, Status: fetch.StatusError, Err: err}
		} else {
			o.result = fetch.Result{Key: d.Key, Status: fetch.StatusSuccess, Data: payload}
		}
		close(done)
	}()
}

// State returns the latest result.
func (o *Observer) State() fetch.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Done is closed once the current key has settled. Superseding a key also
// closes the channel returned for it.
func (o *Observer) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
