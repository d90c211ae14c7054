// Package fetch defines declarative, key-addressed data needs: a Descriptor is
// a (key, producer, enabled) triple recomputed from the current filter inputs.
package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key identifies one data request. Two descriptors with equal keys must issue
// the same request, so the key lists every input the producer reads.
type Key []any

// NewKey builds a key from an operation name and its inputs.
func NewKey(op string, parts ...any) Key {
	k := make(Key, 0, len(parts)+1)
	k = append(k, op)
	return append(k, parts...)
}

// Hash returns a stable 64-bit hash of the key, for use as a map index.
func (k Key) Hash() uint64 {
	return xxhash.Sum64(k.canonical())
}

// canonical encodes every part as JSON followed by a NUL byte, so map key order does not matter.
func (k Key) canonical() []byte {
	var buf bytes.Buffer
	for _, p := range k {
		b, err := json.Marshal(p)
		if err != nil {
			b = []byte(fmt.Sprintf("%#v", p))
		}
		buf.Write(b)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// Equal reports whether both keys identify the same request.
// It compares the encoded parts, so keys with colliding hashes are never equal.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	return bytes.Equal(k.canonical(), other.canonical())
}

// Op returns the operation name (the first part), or "" for an empty key.
func (k Key) Op() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

// String renders the key for logs.
func (k Key) String() string {
	parts := make([]string, 0, len(k))
	for _, p := range k {
		b, err := json.Marshal(p)
		if err != nil {
			parts = append(parts, fmt.Sprint(p))
			continue
		}
		parts = append(parts, string(b))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
