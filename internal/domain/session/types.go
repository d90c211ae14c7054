// Package session models the authenticated client session: the user record,
// the stores (magasins) the user may query and the bearer token.
package session

import (
	"bytes"
	"encoding/json"
)

// StorageKey is the record key under which the session is persisted.
const StorageKey = "AUTH"

// Session is the client-side authentication state.
// All fields are opaque backend values except Token. The zero value is the empty session.
type Session struct {
	// User is the backend user record (any JSON shape).
	User json.RawMessage `json:"user,omitempty"`
	// Magasins is the ordered list of stores the user is authorized for.
	// A nil list is absent; an empty list is persisted as [].
	Magasins []json.RawMessage `json:"magasins"`
	// Token is the bearer token sent on every request while present.
	Token string `json:"token,omitempty"`
}

// Empty returns the empty session.
func Empty() Session {
	return Session{}
}

// IsEmpty reports whether every field is absent.
func (s Session) IsEmpty() bool {
	return !s.HasUser() && len(s.Magasins) == 0 && s.Token == ""
}

// HasUser reports whether a user record is present.
// This is what the route guard of the dashboard checks.
func (s Session) HasUser() bool {
	u := bytes.TrimSpace(s.User)
	return len(u) > 0 && !bytes.Equal(u, []byte("null"))
}

// Authenticated reports whether a token is present.
// This is what the request client relies on to attach credentials.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// GuardMismatch reports the case the route guard lets through without credentials:
// a user is present but no token is.
func (s Session) GuardMismatch() bool {
	return s.HasUser() && !s.Authenticated()
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s Session) Clone() Session {
	out := Session{Token: s.Token}
	if s.User != nil {
		out.User = append(json.RawMessage(nil), s.User...)
	}
	if s.Magasins != nil {
		out.Magasins = make([]json.RawMessage, len(s.Magasins))
		for i, m := range s.Magasins {
			out.Magasins[i] = append(json.RawMessage(nil), m...)
		}
	}
	return out
}

// storedSession is the persisted form. Absent fields are left out.
type storedSession struct {
	User     json.RawMessage    `json:"user,omitempty"`
	Magasins *[]json.RawMessage `json:"magasins,omitempty"`
	Token    string             `json:"token,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Session) MarshalJSON() ([]byte, error) {
	out := storedSession{User: s.User, Token: s.Token}
	if s.Magasins != nil {
		out.Magasins = &s.Magasins
	}
	return json.Marshal(out)
}

// Encode serializes the session for the client store.
func Encode(s Session) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored session. Malformed input yields the empty session and ok=false;
// a stored value is never fatal.
func Decode(stored string) (s Session, ok bool) {
	if stored == "" {
		return Empty(), false
	}
	if err := json.Unmarshal([]byte(stored), &s); err != nil {
		return Empty(), false
	}
	return s, true
}
