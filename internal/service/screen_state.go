package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// ScreenState drives the data needs of one screen from its filter inputs.
type ScreenState struct {
	screen  Screen
	backend outbound.SofiSoftAPI
	logger  *slog.Logger
	fields  map[string]struct{}
	preds   []outbound.Predicate
	obs     []*Observer

	mu      sync.Mutex
	filters Filters
}

// NewScreenState compiles the readiness expressions of screen.
func NewScreenState(screen Screen, backend outbound.SofiSoftAPI, qc *QueryClient, compiler outbound.ReadinessCompiler, logger *slog.Logger) (*ScreenState, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScreenState{
		screen:  screen,
		backend: backend,
		logger:  logger,
		fields:  make(map[string]struct{}, len(screen.Fields)),
		filters: Filters{},
	}
	for _, f := range screen.Fields {
		s.fields[f] = struct{}{}
	}
	for _, n := range screen.Needs {
		for _, in := range n.Inputs {
			if _, ok := s.fields[in]; !ok {
				return nil, fmt.Errorf("screen %s: need %s reads unknown field %q", screen.Name, n.Name, in)
			}
		}
		p, err := compiler.Compile(n.When, screen.Fields)
		if err != nil {
			return nil, fmt.Errorf("screen %s: need %s: %w", screen.Name, n.Name, err)
		}
		s.preds = append(s.preds, p)
		s.obs = append(s.obs, NewObserver(qc))
	}
	return s, nil
}

// Apply replaces the filter inputs and updates every need. Empty fields take
// the screen default. Unknown field names are rejected.
func (s *ScreenState) Apply(ctx context.Context, in Filters) error {
	f := make(Filters, len(s.screen.Fields))
	for name, v := range in {
		if _, ok := s.fields[name]; !ok {
			return fmt.Errorf("screen %s has no filter %q", s.screen.Name, name)
		}
		f[name] = v
	}
	for name, v := range s.screen.Defaults {
		if f[name] == "" {
			f[name] = v
		}
	}

	descriptors := make([]fetch.Descriptor, len(s.screen.Needs))
	for i, n := range s.screen.Needs {
		ready, err := s.preds[i].Ready(f)
		if err != nil {
			return fmt.Errorf("need %s: %w", n.Name, err)
		}
		descriptors[i] = fetch.Descriptor{
			Name: n.Name,
			Key:  n.Key(s.screen.Name, f),
			Producer: func(ctx context.Context) (api.Payload, error) {
				return n.Call(ctx, s.backend, f)
			},
			Enabled: ready,
		}
	}

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()

	for i, d := range descriptors {
		if !d.Enabled {
			s.logger.Debug("need not ready", "screen", s.screen.Name, "need", d.Name)
		}
		s.obs[i].Update(ctx, d)
	}
	return nil
}

// Wait blocks until every need has settled or ctx ends.
func (s *ScreenState) Wait(ctx context.Context) error {
	for _, o := range s.obs {
		select {
		case <-o.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Snapshot returns the latest result of every need by name.
func (s *ScreenState) Snapshot() map[string]fetch.Result {
	out := make(map[string]fetch.Result, len(s.obs))
	for i, n := range s.screen.Needs {
		out[n.Name] = s.obs[i].State()
	}
	return out
}

// Filters returns the filter inputs last applied, defaults included.
func (s *ScreenState) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Filters, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

// NeedNames returns the need names in declaration order.
func (s *ScreenState) NeedNames() []string {
	names := make([]string, len(s.screen.Needs))
	for i, n := range s.screen.Needs {
		names[i] = n.Name
	}
	return names
}

// LookupScreen returns the screen called name.
func LookupScreen(name string) (Screen, bool) {
	for _, sc := range Screens() {
		if sc.Name == name {
			return sc, true
		}
	}
	return Screen{}, false
}

// ScreenNames returns the sorted names of every screen.
func ScreenNames() []string {
	var names []string
	for _, sc := range Screens() {
		names = append(names, sc.Name)
	}
	sort.Strings(names)
	return names
}
