package session

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// The login response has no fixed schema. Each session field is read from an
// ordered list of paths; the first path holding a usable value wins.
var (
	TokenPaths = []string{"data.token", "token", "data.jwt"}
	StorePaths = []string{"data.magasins", "magasins", "data.stores", "stores"}
	UserPaths  = []string{"data.user", "user"}
)

// Kind restricts which JSON values a rule accepts.
type Kind int

const (
	// AnyKind accepts every truthy value.
	AnyKind Kind = iota
	// ScalarKind accepts truthy strings, numbers and booleans, read as strings.
	ScalarKind
	// ArrayKind accepts arrays only (an empty array still matches).
	ArrayKind
)

// Rule is an ordered, first-match-wins extraction rule.
type Rule struct {
	Paths []string
	Kind  Kind
}

// Match is the result of evaluating a Rule.
type Match struct {
	// Path is the path that matched.
	Path  string
	value gjson.Result
}

// Raw returns the matched JSON value.
func (m Match) Raw() json.RawMessage {
	return json.RawMessage(m.value.Raw)
}

// String returns the matched value as a string.
func (m Match) String() string {
	return m.value.String()
}

// Elements returns the elements of a matched array.
func (m Match) Elements() []json.RawMessage {
	items := m.value.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, json.RawMessage(it.Raw))
	}
	return out
}

// Rules used to derive a session from a login response.
var (
	TokenRule = Rule{Paths: TokenPaths, Kind: ScalarKind}
	StoreRule = Rule{Paths: StorePaths, Kind: ArrayKind}
	UserRule  = Rule{Paths: UserPaths, Kind: AnyKind}
)

// Eval returns the first path of r that holds an acceptable value in doc.
func (r Rule) Eval(doc []byte) (Match, bool) {
	for _, p := range r.Paths {
		res := gjson.GetBytes(doc, p)
		if !res.Exists() || !r.accepts(res) {
			continue
		}
		return Match{Path: p, value: res}, true
	}
	return Match{}, false
}

func (r Rule) accepts(res gjson.Result) bool {
	switch r.Kind {
	case ScalarKind:
		return res.Type != gjson.JSON && truthy(res)
	case ArrayKind:
		return res.IsArray()
	default:
		return truthy(res)
	}
}

// truthy mirrors how the dashboard treated loosely-typed values:
// null, false, 0 and "" are absent; objects and arrays are always present.
func truthy(res gjson.Result) bool {
	switch res.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return res.Num != 0
	case gjson.String:
		return res.Str != ""
	default:
		return true
	}
}

// ExtractToken returns the bearer token of a login response.
func ExtractToken(doc []byte) (string, bool) {
	m, ok := TokenRule.Eval(doc)
	if !ok {
		return "", false
	}
	return m.String(), true
}

// ExtractStores returns the authorized stores of a login response.
func ExtractStores(doc []byte) ([]json.RawMessage, bool) {
	m, ok := StoreRule.Eval(doc)
	if !ok {
		return nil, false
	}
	return m.Elements(), true
}

// ExtractUser returns the user record of a login response.
// When no rule matches the whole response is the user.
func ExtractUser(doc []byte) (json.RawMessage, bool) {
	if m, ok := UserRule.Eval(doc); ok {
		return m.Raw(), true
	}
	whole := gjson.ParseBytes(doc)
	if !truthy(whole) {
		return nil, false
	}
	return json.RawMessage(whole.Raw), true
}

// FromLoginResponse builds the session a successful login yields.
// doc must be a JSON document; text responses are passed as JSON strings.
func FromLoginResponse(doc []byte) Session {
	s := Session{Magasins: []json.RawMessage{}}
	if token, ok := ExtractToken(doc); ok {
		s.Token = token
	}
	if stores, ok := ExtractStores(doc); ok {
		s.Magasins = stores
	}
	if user, ok := ExtractUser(doc); ok {
		s.User = user
	}
	return s
}
