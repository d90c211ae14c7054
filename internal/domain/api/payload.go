// Package api contains the contract types exchanged with the SofiSoft backend:
// opaque response payloads and the request parameters of every endpoint.
package api

import "encoding/json"

// Payload is an opaque backend response.
// The backend does not publish schemas, so payloads are kept as received:
// JSON responses keep their raw bytes, anything else keeps the raw text.
type Payload struct {
	raw  []byte
	json bool
}

// JSONPayload wraps a raw JSON document.
func JSONPayload(raw []byte) Payload {
	return Payload{raw: raw, json: true}
}

// TextPayload wraps a non-JSON response body.
func TextPayload(text string) Payload {
	return Payload{raw: []byte(text)}
}

// IsJSON reports whether the backend answered with a JSON content type.
func (p Payload) IsJSON() bool {
	return p.json
}

// IsZero reports whether the payload carries nothing at all.
func (p Payload) IsZero() bool {
	return len(p.raw) == 0 && !p.json
}

// Text returns the payload body as received.
func (p Payload) Text() string {
	return string(p.raw)
}

// Raw returns the payload as a JSON value. Text payloads are encoded as a JSON string.
func (p Payload) Raw() json.RawMessage {
	if p.json {
		return json.RawMessage(p.raw)
	}
	b, _ := json.Marshal(string(p.raw))
	return b
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return p.Raw(), nil
}
