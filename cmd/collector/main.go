package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acedergren/polisen-events-collector/internal/adapter/feed"
	"github.com/acedergren/polisen-events-collector/internal/adapter/metrics"
	ocistore "github.com/acedergren/polisen-events-collector/internal/adapter/repository/oci"
	"github.com/acedergren/polisen-events-collector/internal/adapter/secrets"
	"github.com/acedergren/polisen-events-collector/internal/pkg/config"
	"github.com/acedergren/polisen-events-collector/internal/pkg/logger"
	"github.com/acedergren/polisen-events-collector/internal/usecase"
)

const defaultInterval = 30 * time.Minute

func main() {
	once := flag.Bool("once", false, "run one collection cycle and exit")
	interval := flag.Duration("interval", defaultInterval, "delay between collection cycles")
	status := flag.Bool("status", false, "print tracked IDs and today's partitions, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Credentials and Object Storage ---
	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	tracker := usecase.NewRecencyTracker(store, cfg.SeenIDCapacity, log)

	if *status {
		reporter := usecase.NewStatusReporter(store, tracker, log)
		report, err := reporter.Report(ctx)
		if err != nil {
			log.Error("status report failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("tracked event IDs: %d\n", report.TrackedIDs)
		if report.LastUpdated != "" {
			fmt.Printf("index last updated: %s\n", report.LastUpdated)
		}
		fmt.Printf("partitions written today: %d\n", len(report.PartitionsToday))
		for _, name := range report.PartitionsToday {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	// --- Collector Pipeline ---
	m := metrics.NewCollectorMetrics()
	writer := usecase.NewPartitionWriter(store, log)
	feedClient := feed.NewClient(cfg.FeedURL, cfg.UserAgent, cfg.FeedTimeout, cfg.FeedMinInterval, log)
	collector := usecase.NewCollector(feedClient, tracker, writer, m, log)

	if *once {
		if err := runCycle(ctx, collector, m, cfg, log); err != nil {
			os.Exit(1)
		}
		return
	}

	// --- Metrics Server (interval mode only) ---
	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", m.Handler())
		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metricsMux,
		}

		go func() {
			log.Info("starting metrics server", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()

		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	log.Info("collector started", "interval", interval.String(), "feed", cfg.FeedURL)

	// Run once at startup, then on every tick. Cycles are synchronous so
	// a slow feed or bucket never overlaps two runs.
	_ = runCycle(ctx, collector, m, cfg, log)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

Loop:
	for {
		select {
		case <-ticker.C:
			_ = runCycle(ctx, collector, m, cfg, log)
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping collector")
			break Loop
		}
	}

	log.Info("collector shut down gracefully")
}

// buildStore resolves the credential bundle and opens the bucket client.
// Credentials live only on this call path; nothing retains them after the
// client is built.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ocistore.ObjectStore, error) {
	resolver, err := secrets.NewResolver(secrets.Options{
		UseVault:             cfg.UseVault,
		UseInstancePrincipal: cfg.UseInstancePrincipal,
		Profile:              cfg.OCIProfile,
		VaultName:            cfg.VaultName,
		VaultRegion:          cfg.VaultRegion,
		VaultCompartmentID:   cfg.VaultCompartmentID,
		DefaultRegion:        cfg.Region,
	}, log)
	if err != nil {
		return nil, err
	}

	creds, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	return ocistore.NewFromCredentials(creds, cfg.Namespace, cfg.BucketName, cfg.Region, log)
}

func runCycle(ctx context.Context, collector *usecase.Collector, m *metrics.CollectorMetrics, cfg *config.Config, log *slog.Logger) error {
	summary, err := collector.Run(ctx)
	if err != nil {
		log.Error("collection cycle failed", "error", err)
	} else {
		log.Info("collection cycle finished",
			"fetched", summary.Fetched,
			"new", summary.New,
			"written", summary.Written,
			"skipped", summary.Skipped,
		)
	}

	if cfg.PushgatewayURL != "" {
		if pushErr := m.Push(cfg.PushgatewayURL); pushErr != nil {
			log.Warn("failed to push metrics", "error", pushErr)
		}
	}

	return err
}
