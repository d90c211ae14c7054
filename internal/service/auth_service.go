// Package service implements the client core: the session controller, the
// store-backed request state and the key-deduplicated data fetching behind each screen.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/session"
	"github.com/SofiSoft/sofisoft-admin/internal/port/inbound"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// AuthService owns the client session. It restores the session from the store
// at construction, changes it only through Login and Logout, and persists every change.
type AuthService struct {
	api    outbound.LoginAPI
	store  outbound.KVStore
	logger *slog.Logger

	mu      sync.Mutex // guards sess, baseURL and subs; serializes persistence
	sess    session.Session
	baseURL string
	subs    map[int]func(session.Session)
	nextSub int
}

var _ inbound.SessionController = (*AuthService)(nil)

// AuthOption configures an AuthService.
type AuthOption func(*authOptions)

type authOptions struct {
	logger         *slog.Logger
	defaultBaseURL string
}

// WithAuthLogger sets the logger.
func WithAuthLogger(l *slog.Logger) AuthOption {
	return func(o *authOptions) { o.logger = l }
}

// WithDefaultBaseURL sets the base URL reported while none is stored.
func WithDefaultBaseURL(u string) AuthOption {
	return func(o *authOptions) { o.defaultBaseURL = u }
}

// NewAuthService creates an AuthService and restores the persisted session.
// A missing or malformed stored session yields the empty session.
func NewAuthService(loginAPI outbound.LoginAPI, store outbound.KVStore, opts ...AuthOption) *AuthService {
	o := authOptions{logger: slog.Default(), defaultBaseURL: api.DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	s := &AuthService{
		api:     loginAPI,
		store:   store,
		logger:  o.logger,
		sess:    session.Empty(),
		baseURL: NormalizeBaseURL(o.defaultBaseURL),
		subs:    make(map[int]func(session.Session)),
	}
	s.restore()
	return s
}

func (s *AuthService) restore() {
	if v, ok, err := s.store.Get(session.StorageKey); err != nil {
		s.logger.Warn("failed to read stored session", "error", err)
	} else if ok {
		sess, valid := session.Decode(v)
		if !valid {
			s.logger.Debug("ignoring malformed stored session")
		}
		s.sess = sess
	}

	if v, ok, err := s.store.Get(BaseURLKey); err != nil {
		s.logger.Warn("failed to read stored base URL", "error", err)
	} else if ok && v != "" {
		s.baseURL = v
	}
}

// Login authenticates against the backend and replaces the session with the
// one derived from the response. Backend failures are returned unchanged and
// leave the session untouched.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) error {
	payload, err := s.api.Login(ctx, api.LoginRequest{Login: identifier, Password: secret})
	if err != nil {
		return err
	}

	next := session.FromLoginResponse(payload.Raw())

	s.mu.Lock()
	s.sess = next
	err = s.persistSession()
	snapshot, subs := s.sess.Clone(), s.subscribers()
	s.mu.Unlock()

	s.notify(subs, snapshot)
	if err != nil {
		return err
	}
	s.logger.Info("logged in", "authenticated", next.Authenticated(), "stores", len(next.Magasins))
	return nil
}

// Logout clears the session. The in-memory session is cleared even when
// persisting fails; the persist error is returned.
func (s *AuthService) Logout() error {
	s.mu.Lock()
	s.sess = session.Empty()
	err := s.persistSession()
	snapshot, subs := s.sess.Clone(), s.subscribers()
	s.mu.Unlock()

	s.notify(subs, snapshot)
	if err == nil {
		s.logger.Info("logged out")
	}
	return err
}

// SetBaseURL changes the backend root address. One trailing slash is stripped.
// Requests read the stored value, so a failed persist leaves the address unchanged.
func (s *AuthService) SetBaseURL(u string) error {
	u = NormalizeBaseURL(u)

	s.mu.Lock()
	if err := s.store.Set(BaseURLKey, u); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist base URL: %w", err)
	}
	s.baseURL = u
	snapshot, subs := s.sess.Clone(), s.subscribers()
	s.mu.Unlock()

	s.notify(subs, snapshot)
	s.logger.Info("base URL set", "base_url", u)
	return nil
}

// BaseURL returns the current backend root address.
func (s *AuthService) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// Session returns a copy of the current session.
func (s *AuthService) Session() session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Clone()
}

// Subscribe registers fn to be called synchronously after every change.
func (s *AuthService) Subscribe(fn func(session.Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// persistSession writes the session record. Caller holds s.mu.
func (s *AuthService) persistSession() error {
	encoded, err := session.Encode(s.sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(session.StorageKey, encoded); err != nil {
		s.logger.Error("failed to persist session", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// subscribers returns the callbacks in registration order. Caller holds s.mu.
func (s *AuthService) subscribers() []func(session.Session) {
	out := make([]func(session.Session), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (s *AuthService) notify(subs []func(session.Session), snapshot session.Session) {
	for _, fn := range subs {
		fn(snapshot.Clone())
	}
}
