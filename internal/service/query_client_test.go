package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
)

// gatedProducer blocks until release is closed and counts its invocations.
func gatedProducer(calls *atomic.Int32, release <-chan struct{}, body string) fetch.Producer {
	return func(context.Context) (api.Payload, error) {
		calls.Add(1)
		<-release
		return api.JSONPayload([]byte(body)), nil
	}
}

func TestQueryClient_DedupesConcurrentFetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	var calls atomic.Int32
	release := make(chan struct{})
	d := fetch.Descriptor{
		Name:     "kpis",
		Key:      fetch.NewKey("kpis", "5", "2024-01-01", "2024-01-31"),
		Producer: gatedProducer(&calls, release, `{"ca":10}`),
		Enabled:  true,
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := qc.Fetch(context.Background(), d)
			results[i], errs[i] = string(p.Raw()), err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	qc.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("producer calls = %d, want 1", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil || results[i] != `{"ca":10}` {
			t.Errorf("fetch %d = %q, %v", i, results[i], errs[i])
		}
	}
}

func TestQueryClient_CachesSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	var calls atomic.Int32
	d := fetch.Descriptor{
		Key: fetch.NewKey("magasins"),
		Producer: func(context.Context) (api.Payload, error) {
			calls.Add(1)
			return api.JSONPayload([]byte(`[]`)), nil
		},
		Enabled: true,
	}

	for i := 0; i < 3; i++ {
		if _, err := qc.Fetch(context.Background(), d); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("producer calls = %d, want 1", got)
	}

	qc.Clear()
	if _, ok := qc.Cached(d.Key); ok {
		t.Error("Cached() after Clear() = true")
	}
	if _, err := qc.Fetch(context.Background(), d); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("producer calls = %d, want 2", got)
	}
}

func TestQueryClient_DisabledNeverInvokesProducer(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	invoked := false
	d := fetch.Descriptor{
		Key: fetch.NewKey("infos", "", ""),
		Producer: func(context.Context) (api.Payload, error) {
			invoked = true
			return api.Payload{}, nil
		},
		Enabled: false,
	}

	if _, err := qc.Fetch(context.Background(), d); !errors.Is(err, fetch.ErrDisabled) {
		t.Errorf("Fetch() error = %v, want ErrDisabled", err)
	}
	if invoked {
		t.Error("producer invoked for disabled descriptor")
	}
}

func TestQueryClient_FailuresAreNotCached(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	var calls atomic.Int32
	boom := errors.New("boom")
	d := fetch.Descriptor{
		Key: fetch.NewKey("dims", "X"),
		Producer: func(context.Context) (api.Payload, error) {
			calls.Add(1)
			return api.Payload{}, boom
		},
		Enabled: true,
	}

	for i := 0; i < 2; i++ {
		if _, err := qc.Fetch(context.Background(), d); !errors.Is(err, boom) {
			t.Fatalf("Fetch() error = %v, want boom", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("producer calls = %d, want 2", got)
	}
}

func TestQueryClient_CallerCancelDoesNotAbortProducer(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	release := make(chan struct{})
	var producerErr atomic.Value
	d := fetch.Descriptor{
		Key: fetch.NewKey("evolution", "a", "b"),
		Producer: func(ctx context.Context) (api.Payload, error) {
			<-release
			if ctx.Err() != nil {
				producerErr.Store(ctx.Err())
			}
			return api.JSONPayload([]byte(`[1]`)), nil
		},
		Enabled: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := qc.Fetch(ctx, d)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}

	close(release)
	qc.Wait()

	if v := producerErr.Load(); v != nil {
		t.Errorf("producer saw cancelled context: %v", v)
	}
	if p, ok := qc.Cached(d.Key); !ok || string(p.Raw()) != `[1]` {
		t.Errorf("Cached() = %s, %v; want [1], true", p.Raw(), ok)
	}
}

func TestQueryClient_HashCollisionKeepsKeysApart(t *testing.T) {
	defer goleak.VerifyNone(t)

	qc := NewQueryClient(quietLogger())
	qc.hash = func(fetch.Key) uint64 { return 42 }

	release := make(chan struct{})
	var calls atomic.Int32
	a := fetch.Descriptor{Key: fetch.NewKey("dims", "A"), Producer: gatedProducer(&calls, release, `"a"`), Enabled: true}
	b := fetch.Descriptor{Key: fetch.NewKey("dims", "B"), Producer: gatedProducer(&calls, release, `"b"`), Enabled: true}

	type out struct {
		body string
		err  error
	}
	resA, resB := make(chan out, 1), make(chan out, 1)
	go func() {
		p, err := qc.Fetch(context.Background(), a)
		resA <- out{string(p.Raw()), err}
	}()
	time.Sleep(10 * time.Millisecond)
	go func() {
		p, err := qc.Fetch(context.Background(), b)
		resB <- out{string(p.Raw()), err}
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)

	if r := <-resA; r.err != nil || r.body != `"a"` {
		t.Errorf("Fetch(A) = %s, %v; want \"a\"", r.body, r.err)
	}
	if r := <-resB; r.err != nil || r.body != `"b"` {
		t.Errorf("Fetch(B) = %s, %v; want \"b\"", r.body, r.err)
	}
	qc.Wait()
	if got := calls.Load(); got != 2 {
		t.Errorf("producer calls = %d, want 2", got)
	}

	// Only one entry fits the colliding slot; the other key must miss rather than alias.
	pa, okA := qc.Cached(a.Key)
	pb, okB := qc.Cached(b.Key)
	if okA && okB {
		t.Fatal("both colliding keys cached in one slot")
	}
	if okA && string(pa.Raw()) != `"a"` || okB && string(pb.Raw()) != `"b"` {
		t.Errorf("Cached() served another key's payload: a=%s b=%s", pa.Raw(), pb.Raw())
	}
}
