package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/acedergren/polisen-events-collector/internal/adapter/metrics"
	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// RunSummary reports what a single collection cycle did.
type RunSummary struct {
	Fetched int
	New     int
	Written int
	Skipped int
}

// Collector orchestrates one collection cycle: fetch the feed window, filter
// out already-seen IDs, persist the new events, then advance the recency
// index. Not safe for overlapping invocations; the scheduler must serialize
// runs.
type Collector struct {
	feed    domain.EventFeed
	tracker *RecencyTracker
	writer  *PartitionWriter
	metrics *metrics.CollectorMetrics
	logger  *slog.Logger
}

// NewCollector creates the orchestrator. m may be nil to disable metrics.
func NewCollector(feed domain.EventFeed, tracker *RecencyTracker, writer *PartitionWriter, m *metrics.CollectorMetrics, logger *slog.Logger) *Collector {
	return &Collector{
		feed:    feed,
		tracker: tracker,
		writer:  writer,
		metrics: m,
		logger:  logger.With("component", "collector"),
	}
}

// Run executes one collection cycle. The recency index is advanced only after
// every new event of the cycle has been written, and it advances over all
// fetched IDs, including records skipped for unusable timestamps, so they are
// never retried.
func (c *Collector) Run(ctx context.Context) (RunSummary, error) {
	log := c.logger.With("run_id", uuid.NewString())
	var sum RunSummary

	log.Info("starting collection cycle")

	// 1. Fetch the full feed window.
	events, err := c.feed.Fetch(ctx)
	if err != nil {
		c.observeFailure()
		log.Error("failed to fetch feed", "error", err)
		return sum, fmt.Errorf("fetch feed: %w", err)
	}
	sum.Fetched = len(events)

	// 2. Load the persisted recency index.
	seen, err := c.tracker.Load(ctx)
	if err != nil {
		c.observeFailure()
		log.Error("failed to load recency index", "error", err)
		return sum, fmt.Errorf("load recency index: %w", err)
	}

	// 3. Keep only events whose IDs are unseen.
	fresh := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !seen.Contains(e.ID) {
			fresh = append(fresh, e)
		}
	}
	sum.New = len(fresh)

	if len(fresh) == 0 {
		log.Info("no new events", "fetched", sum.Fetched, "tracked", seen.Len())
		c.observeSuccess(sum, seen.Len())
		return sum, nil
	}

	// 4. Persist the new events, partitioned by event date.
	written, skipped, err := c.writer.WriteNew(ctx, fresh)
	if err != nil {
		c.observeFailure()
		log.Error("failed to write partitions", "error", err)
		return sum, fmt.Errorf("write partitions: %w", err)
	}
	sum.Written, sum.Skipped = written, skipped

	// 5. Advance the index over every fetched ID, strictly last.
	for _, e := range events {
		seen.Add(e.ID)
	}
	if err := c.tracker.Save(ctx, seen); err != nil {
		c.observeFailure()
		log.Error("failed to update recency index", "error", err)
		return sum, fmt.Errorf("update recency index: %w", err)
	}

	log.Info("collection cycle completed", "fetched", sum.Fetched, "new", sum.New, "written", sum.Written, "skipped", sum.Skipped)
	c.observeSuccess(sum, seen.Len())
	return sum, nil
}

func (c *Collector) observeFailure() {
	if c.metrics == nil {
		return
	}
	c.metrics.RunsTotal.WithLabelValues("failed").Inc()
}

func (c *Collector) observeSuccess(sum RunSummary, tracked int) {
	if c.metrics == nil {
		return
	}
	c.metrics.RunsTotal.WithLabelValues("success").Inc()
	c.metrics.EventsFetched.Add(float64(sum.Fetched))
	c.metrics.EventsNew.Add(float64(sum.New))
	c.metrics.EventsWritten.Add(float64(sum.Written))
	c.metrics.RecordsSkipped.Add(float64(sum.Skipped))
	c.metrics.TrackedIDs.Set(float64(tracked))
	c.metrics.LastRunUnix.SetToCurrentTime()
}
