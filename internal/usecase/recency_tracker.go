package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// MetadataObjectName is the fixed location of the recency index in the bucket.
const MetadataObjectName = "metadata/last_seen.json"

// recencyDocument is the wire form of the persisted recency index.
type recencyDocument struct {
	SeenIDs      []int64 `json:"seen_ids"`
	LastUpdated  string  `json:"last_updated"`
	TotalTracked int     `json:"total_tracked"`
}

// RecencyTracker loads and persists the bounded set of already-ingested event
// IDs at a fixed object in the bucket.
type RecencyTracker struct {
	store    domain.ObjectStore
	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecencyTracker creates a tracker persisting at MetadataObjectName.
func NewRecencyTracker(store domain.ObjectStore, capacity int, logger *slog.Logger) *RecencyTracker {
	return &RecencyTracker{
		store:    store,
		capacity: capacity,
		logger:   logger.With("component", "recency_tracker"),
		now:      time.Now,
	}
}

// Load fetches the persisted index. A missing object is the first-run case
// and yields an empty set, not an error. An object that exists but cannot be
// decoded yields ErrMetadataCorrupt with the cause preserved.
func (t *RecencyTracker) Load(ctx context.Context) (*domain.BoundedIDSet, error) {
	doc, found, err := t.document(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		t.logger.Info("no recency index found, starting fresh")
		return domain.NewBoundedIDSet(t.capacity), nil
	}

	set := domain.NewBoundedIDSet(t.capacity)
	for _, id := range doc.SeenIDs {
		set.Add(id)
	}
	t.logger.Debug("loaded recency index", "tracked", set.Len(), "last_updated", doc.LastUpdated)
	return set, nil
}

// document fetches and decodes the raw index document. found is false when
// the object does not exist yet.
func (t *RecencyTracker) document(ctx context.Context) (recencyDocument, bool, error) {
	data, err := t.store.Get(ctx, MetadataObjectName)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return recencyDocument{}, false, nil
	}
	if err != nil {
		return recencyDocument{}, false, fmt.Errorf("load %s: %w", MetadataObjectName, err)
	}

	var doc recencyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return recencyDocument{}, false, fmt.Errorf("%w: decode %s: %w", domain.ErrMetadataCorrupt, MetadataObjectName, err)
	}
	return doc, true, nil
}

// Save persists the set as a full-object replace, stamped with the current
// UTC time. IDs are written descending, newest first.
func (t *RecencyTracker) Save(ctx context.Context, set *domain.BoundedIDSet) error {
	ids := set.IDs()
	doc := recencyDocument{
		SeenIDs:      ids,
		LastUpdated:  t.now().UTC().Format(time.RFC3339),
		TotalTracked: len(ids),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recency index: %w", err)
	}
	if err := t.store.Put(ctx, MetadataObjectName, data); err != nil {
		return fmt.Errorf("persist %s: %w", MetadataObjectName, err)
	}
	t.logger.Info("recency index updated", "tracked", len(ids))
	return nil
}
