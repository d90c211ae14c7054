package outbound

// KVStore is the persisted client store: a small string key-value stash that
// survives restarts. Values are whole records; Set replaces the previous value.
type KVStore interface {
	// Get returns the value stored under key. ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}
