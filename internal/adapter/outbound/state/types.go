// Package state provides the file-backed persisted client store.
//
// The state.json file holds the client's key-value records (the backend base
// URL and the serialized session). Writes are atomic, locked across processes
// and keep a backup of the previous file.
package state

import "time"

// StateFile is the structure persisted in state.json.
type StateFile struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// Records are the stored values by key.
	Records map[string]string `json:"records"`

	// CreatedAt is when this state file was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this state file was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}
