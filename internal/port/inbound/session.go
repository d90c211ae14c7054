// Package inbound defines the interfaces the presentation layer (the CLI) calls.
package inbound

import (
	"context"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/session"
)

// SessionController is the presentation boundary of the auth core.
// The session is read-only to callers; it changes only through these operations.
type SessionController interface {
	// Login authenticates against the backend and replaces the session.
	Login(ctx context.Context, identifier, secret string) error

	// Logout replaces the session with the empty session. No backend call is made.
	Logout() error

	// SetBaseURL changes the backend root address for every subsequent request.
	SetBaseURL(url string) error

	// BaseURL returns the backend root address requests are sent to.
	BaseURL() string

	// Session returns a snapshot of the current session.
	Session() session.Session

	// Subscribe registers fn to be called with every new session.
	// The returned function removes the subscription.
	Subscribe(fn func(session.Session)) (unsubscribe func())
}
