package fetch

import (
	"context"
	"errors"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

// ErrDisabled is returned when a disabled descriptor is fetched.
var ErrDisabled = errors.New("fetch disabled: required filters missing")

// Producer issues the request a descriptor stands for.
type Producer func(ctx context.Context) (api.Payload, error)

// Descriptor is a declarative data need.
type Descriptor struct {
	// Name identifies the need on its screen (e.g. "kpis").
	Name string
	// Key is a function of every input the producer reads.
	Key Key
	// Producer issues the request. It must be pure with respect to Key.
	Producer Producer
	// Enabled gates readiness: false while any required filter is empty.
	Enabled bool
}

// Status is the lifecycle state of a need.
type Status string

// Statuses reported for a need.
const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the latest known outcome of a need.
type Result struct {
	Key    Key         `json:"-"`
	Status Status      `json:"status"`
	Data   api.Payload `json:"data"`
	Err    error       `json:"-"`
}

// Settled reports whether the result is final for its key.
func (r Result) Settled() bool {
	return r.Status != StatusLoading
}
