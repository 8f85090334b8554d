package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"physiobill/internal/blob"
	"physiobill/internal/config"
	"physiobill/internal/core"
	"physiobill/internal/documents"
	"physiobill/internal/observability"
	"physiobill/internal/persistence"
)

// app holds the services one command invocation works with.
type app struct {
	cfg       *config.Config
	logger    *observability.ZerologLogger
	registry  *prometheus.Registry
	adapter   *persistence.Adapter
	store     *core.Store
	publisher *documents.Publisher
}

// openApp loads configuration, opens storage and loads the billing state.
func openApp(ctx context.Context, envFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger := observability.NewZerologLogger(logOut, cfg.LogLevel, cfg.IsDev())
	registry := prometheus.NewRegistry()
	metrics, err := observability.NewPrometheusRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	clinic, err := config.LoadClinic(cfg.ClinicFile)
	if err != nil {
		return nil, err
	}
	adapter, err := persistence.Open(ctx, cfg.Storage())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := core.NewStore(adapter,
		core.WithLogger(logger),
		core.WithMetrics(metrics),
		core.WithClinicInfo(clinic),
	)
	if err := store.Load(ctx); err != nil {
		_ = adapter.Close()
		return nil, err
	}
	docs, err := blob.Open(ctx, cfg.Documents())
	if err != nil {
		_ = adapter.Close()
		return nil, fmt.Errorf("open documents: %w", err)
	}
	logger.Debug("physiobill ready",
		"storage", string(adapter.Driver()),
		"documents", string(docs.Driver()))
	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		adapter:   adapter,
		store:     store,
		publisher: documents.NewPublisher(docs, documents.WithLogger(logger)),
	}, nil
}

// close releases storage and, when requested, writes the collected metrics
// in the Prometheus text format.
func (a *app) close(metricsFile string) error {
	var errs []error
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.adapter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
