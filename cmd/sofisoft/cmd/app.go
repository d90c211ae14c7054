package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/backend"
	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/memory"
	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/sqlite"
	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/state"
	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/telemetry"
	"github.com/SofiSoft/sofisoft-admin/internal/config"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/session"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
	"github.com/SofiSoft/sofisoft-admin/internal/service"
)

// app holds the components one command invocation works with.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	store    outbound.KVStore
	registry *prometheus.Registry
	client   *backend.Client
	auth     *service.AuthService
	queries  *service.QueryClient

	closers []func(context.Context) error
}

// newApp loads the configuration and wires the store, the request client and
// the session controller. Callers must call close.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	if f := config.ConfigFileUsed(); f != "" {
		logger.Debug("loaded config", "file", f)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      cmd.OutOrStdout(),
		registry: prometheus.NewRegistry(),
	}

	store, closeStore, err := openStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closeStore != nil {
		a.closers = append(a.closers, func(context.Context) error { return closeStore() })
	}

	tp, shutdown, err := telemetry.Setup(cfg.Tracing.Enabled, cmd.ErrOrStderr(), Version)
	if err != nil {
		_ = a.close(cmd.Context())
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	cs := service.NewClientState(store, cfg.API.BaseURL, logger)
	a.client = backend.NewClient(cs,
		backend.WithLogger(logger),
		backend.WithMetrics(backend.NewMetrics(a.registry)),
		backend.WithTracer(tp.Tracer("github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/backend")),
		backend.WithTimeout(cfg.HTTPTimeoutDuration()),
	)
	a.auth = service.NewAuthService(a.client, store,
		service.WithAuthLogger(logger),
		service.WithDefaultBaseURL(cfg.API.BaseURL),
	)
	a.queries = service.NewQueryClient(logger)
	// Cached payloads belong to the session that fetched them.
	a.closers = append(a.closers, wrapUnsubscribe(a.auth.Subscribe(func(session.Session) {
		a.queries.Clear()
	})))
	return a, nil
}

func wrapUnsubscribe(cancel func()) func(context.Context) error {
	return func(context.Context) error {
		cancel()
		return nil
	}
}

// openStore opens the configured client store. The returned close func may be nil.
func openStore(sc config.StoreConfig, logger *slog.Logger) (outbound.KVStore, func() error, error) {
	switch sc.Driver {
	case config.StoreFile:
		fs := state.NewFileKVStore(sc.Path, logger)
		logger.Debug("opened client store", "driver", sc.Driver, "path", fs.Path())
		return fs, nil, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(sc.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreMemory:
		return memory.NewKVStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// close waits for in-flight fetches, writes the metrics textfile when
// configured, and releases every resource.
func (a *app) close(ctx context.Context) error {
	if a.queries != nil {
		a.queries.Wait()
	}

	var errs []error
	if a.cfg != nil && a.cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(cmd.Context()); cerr != nil {
			a.logger.Warn("shutdown failed", "error", cerr)
		}
	}()
	return fn(a)
}
