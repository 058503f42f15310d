package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// StatusReport summarizes the collector's persisted state. LastUpdated is
// empty when no index has been written yet.
type StatusReport struct {
	TrackedIDs      int
	LastUpdated     string
	PartitionsToday []string
}

// StatusReporter answers read-only operational queries against the bucket.
type StatusReporter struct {
	store   domain.ObjectStore
	tracker *RecencyTracker
	logger  *slog.Logger
	now     func() time.Time
}

// NewStatusReporter creates a reporter over the same store the collector
// writes to.
func NewStatusReporter(store domain.ObjectStore, tracker *RecencyTracker, logger *slog.Logger) *StatusReporter {
	return &StatusReporter{
		store:   store,
		tracker: tracker,
		logger:  logger.With("component", "status"),
		now:     time.Now,
	}
}

// Report loads the recency index and lists the partition objects written
// under today's UTC date prefix.
func (r *StatusReporter) Report(ctx context.Context) (StatusReport, error) {
	var report StatusReport

	doc, found, err := r.tracker.document(ctx)
	if err != nil {
		return report, err
	}
	if found {
		seen := domain.NewBoundedIDSet(r.tracker.capacity)
		for _, id := range doc.SeenIDs {
			seen.Add(id)
		}
		report.TrackedIDs = seen.Len()
		report.LastUpdated = doc.LastUpdated
	}

	prefix := "events/" + r.now().UTC().Format("2006/01/02") + "/"
	names, err := r.store.List(ctx, prefix)
	if err != nil {
		return report, fmt.Errorf("list partitions under %s: %w", prefix, err)
	}
	sort.Strings(names)
	report.PartitionsToday = names

	return report, nil
}
