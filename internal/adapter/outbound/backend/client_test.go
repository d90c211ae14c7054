package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

// fakeState is a mutable State for tests.
type fakeState struct {
	mu      sync.Mutex
	baseURL string
	token   string
}

func (s *fakeState) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

func (s *fakeState) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeState) set(baseURL, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = baseURL
	s.token = token
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, state State, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewClient(state, opts...)
}

// seen is one request as received by the test server.
type seen struct {
	method  string
	uri     string
	auth    string
	ctype   string
	body    string
	hasAuth bool
}

// recorded captures what the test server received.
type recorded struct {
	mu   sync.Mutex
	last seen
}

func (r *recorded) get() seen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func recordingServer(t *testing.T, rec *recorded, respond http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_, hasAuth := r.Header["Authorization"]
		rec.mu.Lock()
		rec.last = seen{
			method:  r.Method,
			uri:     r.URL.RequestURI(),
			auth:    r.Header.Get("Authorization"),
			ctype:   r.Header.Get("Content-Type"),
			body:    string(b),
			hasAuth: hasAuth,
		}
		rec.mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonOK(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

func TestRequest_BearerOnlyWithToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		wantAuth string
		wantSent bool
	}{
		{name: "with token", token: "T1", wantAuth: "Bearer T1", wantSent: true},
		{name: "no token", token: "", wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorded{}
			srv := recordingServer(t, rec, jsonOK(`{"ok":true}`))
			state := &fakeState{baseURL: srv.URL, token: tt.token}

			c := newTestClient(t, state)
			if _, err := c.Request(context.Background(), http.MethodGet, "/ping", nil); err != nil {
				t.Fatalf("Request() error: %v", err)
			}

			got := rec.get()
			if got.hasAuth != tt.wantSent {
				t.Errorf("Authorization sent = %v, want %v", got.hasAuth, tt.wantSent)
			}
			if got.auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got.auth, tt.wantAuth)
			}
			if got.ctype != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got.ctype)
			}
		})
	}
}

func TestRequest_ReadsStatePerCall(t *testing.T) {
	t.Parallel()

	recA, recB := &recorded{}, &recorded{}
	srvA := recordingServer(t, recA, jsonOK(`"a"`))
	srvB := recordingServer(t, recB, jsonOK(`"b"`))

	state := &fakeState{baseURL: srvA.URL}
	c := newTestClient(t, state)

	if _, err := c.Request(context.Background(), http.MethodGet, "/x", nil); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	state.set(srvB.URL, "T2")
	if _, err := c.Request(context.Background(), http.MethodGet, "/x", nil); err != nil {
		t.Fatalf("Request() error: %v", err)
	}

	if got := recA.get(); got.uri != "/x" || got.hasAuth {
		t.Errorf("first server got uri=%q auth=%v", got.uri, got.hasAuth)
	}
	if got := recB.get(); got.uri != "/x" || got.auth != "Bearer T2" {
		t.Errorf("second server got uri=%q auth=%q", got.uri, got.auth)
	}
}

func TestRequest_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeState{baseURL: "http://127.0.0.1:1"})
	_, err := c.Request(context.Background(), http.MethodDelete, "/x", nil)
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("error = %v, want ErrUnsupportedMethod", err)
	}
}

func TestRequest_NoBodyOnNil(t *testing.T) {
	t.Parallel()

	rec := &recorded{}
	srv := recordingServer(t, rec, jsonOK(`{}`))
	c := newTestClient(t, &fakeState{baseURL: srv.URL})

	if _, err := c.Request(context.Background(), http.MethodPost, "/x", nil); err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if got := rec.get(); got.body != "" {
		t.Errorf("body = %q, want empty", got.body)
	}
}

func TestRequest_HeaderOverride(t *testing.T) {
	t.Parallel()

	rec := &recorded{}
	srv := recordingServer(t, rec, jsonOK(`{}`))
	c := newTestClient(t, &fakeState{baseURL: srv.URL, token: "T1"})

	_, err := c.Request(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"},
		WithHeader("Authorization", "Bearer other"),
	)
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if got := rec.get(); got.auth != "Bearer other" {
		t.Errorf("Authorization = %q, want caller override", got.auth)
	}
}

func TestRequest_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no route")
	}))
	defer srv.Close()

	c := newTestClient(t, &fakeState{baseURL: srv.URL})
	_, err := c.GetDims(context.Background(), api.BarcodeRequest{Barcode: "X"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAPI) {
		t.Errorf("errors.Is(err, ErrAPI) = false for %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.StatusText != "Not Found" {
		t.Errorf("status = %d %q", apiErr.StatusCode, apiErr.StatusText)
	}

	msg := err.Error()
	for _, want := range []string{"POST", "/getDims", "404", "no route"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestRequest_TransportError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := newTestClient(t, &fakeState{baseURL: "http://" + addr})
	_, err = c.Request(context.Background(), http.MethodGet, "/x", nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failure must not carry a status code")
	}
}

func TestRequest_PayloadKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ctype    string
		body     string
		wantJSON bool
		wantErr  bool
	}{
		{name: "json", ctype: "application/json", body: `{"n":1}`, wantJSON: true},
		{name: "json with charset", ctype: "application/json; charset=utf-8", body: `[1,2]`, wantJSON: true},
		{name: "text", ctype: "text/plain", body: "hello"},
		{name: "no content type", ctype: "", body: "raw"},
		{name: "invalid json", ctype: "application/json", body: `{nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.ctype != "" {
					w.Header().Set("Content-Type", tt.ctype)
				} else {
					w.Header()["Content-Type"] = nil
				}
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, &fakeState{baseURL: srv.URL})
			p, err := c.Request(context.Background(), http.MethodGet, "/x", nil)
			if tt.wantErr {
				var decErr *DecodeError
				if !errors.As(err, &decErr) {
					t.Fatalf("error = %v, want *DecodeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Request() error: %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if tt.wantJSON {
				if string(p.Raw()) != tt.body {
					t.Errorf("Raw() = %s, want %s", p.Raw(), tt.body)
				}
			} else if p.Text() != tt.body {
				t.Errorf("Text() = %q, want %q", p.Text(), tt.body)
			}
		})
	}
}

func TestRequest_Metrics(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"n": 1})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := newTestClient(t, &fakeState{baseURL: srv.URL}, WithMetrics(m))

	if _, err := c.DashboardMagasins(context.Background(), api.DashboardParams{MagasinID: "5"}); err != nil {
		t.Fatalf("DashboardMagasins() error: %v", err)
	}
	if _, err := c.Request(context.Background(), http.MethodPost, "/fail", nil); err == nil {
		t.Fatal("expected error from /fail")
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/dashboardMagasins", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/fail", "api_error")); got != 1 {
		t.Errorf("api_error count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}
