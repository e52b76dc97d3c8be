package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"turn-restrictions/internal/build"
	"turn-restrictions/internal/config"
	"turn-restrictions/internal/db"
	"turn-restrictions/internal/metrics"
	"turn-restrictions/internal/osm"
	"turn-restrictions/internal/store"
	"turn-restrictions/internal/transport"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load turn restrictions and answer turn checks over NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := setupLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.RefreshInterval, cfg.ZoneOffsetMinutes)
		srv := mcol.Serve(cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	loader, closeLoader, err := openLoader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	opts := []build.Option{build.WithLogger(log)}
	if mcol != nil {
		opts = append(opts, build.WithMetrics(mcol))
		if cfg.TraceEvaluations {
			opts = append(opts, build.WithEvaluationHook(mcol.ObserveEvaluation))
		}
	}
	builder := build.New(cfg.ZoneOffsetMinutes, opts...)

	st := store.New(loader, builder, cfg.RefreshInterval, log, storeMetrics(mcol))
	if err := st.Refresh(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	st.StartRefresher(ctx)
	defer st.Stop()

	if cfg.NATSEnabled {
		resp, err := transport.NewResponder(cfg.NATSURL, cfg.NATSSubject, st, log, responderMetrics(mcol))
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer resp.Close()
	}

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

// openLoader picks the file source when configured, else the database,
// resolving the latest import for the region first.
func openLoader(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Loader, func(), error) {
	if cfg.RestrictionsFile != "" {
		log.Info("loading restrictions from file", zap.String("path", cfg.RestrictionsFile))
		return osm.FileSource{Path: cfg.RestrictionsFile}, func() {}, nil
	}

	dsn := cfg.DatabaseURL
	if cfg.Region != "" {
		rootDSN, err := db.WithDBName(cfg.DatabaseURL, "postgres")
		if err != nil {
			return nil, nil, fmt.Errorf("invalid base DSN: %w", err)
		}
		imp, err := resolveRegion(ctx, rootDSN, cfg.Region)
		if err != nil {
			return nil, nil, err
		}
		if dsn, err = db.WithDBName(cfg.DatabaseURL, imp.DBName); err != nil {
			return nil, nil, fmt.Errorf("compose DSN: %w", err)
		}
		log.Info("using import database",
			zap.String("db", imp.DBName),
			zap.String("region", imp.Region),
			zap.Time("imported_at", imp.ImportedAt),
			zap.Int64("restrictions", imp.Restrictions))
	}

	sqlDB, err := db.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	return db.Source{DB: sqlDB}, func() { sqlDB.Close() }, nil
}

func resolveRegion(ctx context.Context, rootDSN, region string) (db.Import, error) {
	meta, err := db.Open(rootDSN)
	if err != nil {
		return db.Import{}, fmt.Errorf("db open (meta): %w", err)
	}
	defer meta.Close()
	if err := db.Ping(ctx, meta); err != nil {
		return db.Import{}, fmt.Errorf("db ping (meta): %w", err)
	}
	imp, err := db.LatestImport(ctx, meta, region)
	if err != nil {
		return db.Import{}, fmt.Errorf("resolve latest import for region %q: %w", region, err)
	}
	return imp, nil
}

// The interfaces are satisfied by *metrics.Collector, but a nil collector must
// reach the consumers as a nil interface.
func storeMetrics(c *metrics.Collector) store.Metrics {
	if c == nil {
		return nil
	}
	return c
}

func responderMetrics(c *metrics.Collector) transport.ResponderMetrics {
	if c == nil {
		return nil
	}
	return c
}
