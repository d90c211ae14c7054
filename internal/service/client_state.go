package service

import (
	"log/slog"
	"strings"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/session"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// BaseURLKey is the record key under which the backend base URL is persisted.
const BaseURLKey = "API_BASE_URL"

// ClientState exposes the persisted base URL and token to the request client.
// Both are read from the store on every call.
type ClientState struct {
	store          outbound.KVStore
	defaultBaseURL string
	logger         *slog.Logger
}

// NewClientState creates a ClientState over store. An empty defaultBaseURL means api.DefaultBaseURL.
func NewClientState(store outbound.KVStore, defaultBaseURL string, logger *slog.Logger) *ClientState {
	if defaultBaseURL == "" {
		defaultBaseURL = api.DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientState{
		store:          store,
		defaultBaseURL: NormalizeBaseURL(defaultBaseURL),
		logger:         logger,
	}
}

// BaseURL returns the stored base URL, or the default when none is stored.
func (c *ClientState) BaseURL() string {
	v, ok, err := c.store.Get(BaseURLKey)
	if err != nil {
		c.logger.Warn("failed to read base URL, using default", "error", err)
		return c.defaultBaseURL
	}
	if !ok || v == "" {
		return c.defaultBaseURL
	}
	return v
}

// Token returns the token of the stored session, or "".
// A malformed stored session has no token.
func (c *ClientState) Token() string {
	v, ok, err := c.store.Get(session.StorageKey)
	if err != nil {
		c.logger.Warn("failed to read session", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	s, _ := session.Decode(v)
	return s.Token
}

// NormalizeBaseURL strips one trailing slash.
func NormalizeBaseURL(u string) string {
	return strings.TrimSuffix(u, "/")
}
