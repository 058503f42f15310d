package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/acedergren/polisen-events-collector/internal/adapter/metrics"
	"github.com/acedergren/polisen-events-collector/internal/domain"
	"github.com/acedergren/polisen-events-collector/internal/domain/mocks"
)

func newCollectorFixture(store *mocks.MockObjectStore, feed *mocks.MockEventFeed, m *metrics.CollectorMetrics) *Collector {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewRecencyTracker(store, 1000, logger)
	writer := NewPartitionWriter(store, logger)
	return NewCollector(feed, tracker, writer, m, logger)
}

func seedIndex(store *mocks.MockObjectStore, ids ...int64) []byte {
	doc := recencyDocument{SeenIDs: ids, LastUpdated: "2026-03-14T09:26:53Z", TotalTracked: len(ids)}
	raw, _ := json.MarshalIndent(doc, "", "  ")
	store.Objects[MetadataObjectName] = raw
	return raw
}

func savedIDs(t *testing.T, store *mocks.MockObjectStore) map[int64]bool {
	t.Helper()
	raw, ok := store.Objects[MetadataObjectName]
	if !ok {
		t.Fatalf("expected %s to exist", MetadataObjectName)
	}
	var doc recencyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("saved index not decodable: %v", err)
	}
	ids := make(map[int64]bool, len(doc.SeenIDs))
	for _, id := range doc.SeenIDs {
		ids[id] = true
	}
	return ids
}

func TestCollector_Run(t *testing.T) {
	t.Run("First Run Collects Everything", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 19:38:09 +01:00"},
			{ID: 2, Datetime: "2026-01-02 9:38:09 +01:00"},
			{ID: 3, Datetime: "2026-01-03 00:10:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, nil)

		sum, err := c.Run(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.Fetched != 3 || sum.New != 3 || sum.Written != 3 || sum.Skipped != 0 {
			t.Errorf("unexpected summary: %+v", sum)
		}
		ids := savedIDs(t, store)
		for _, id := range []int64{1, 2, 3} {
			if !ids[id] {
				t.Errorf("expected saved index to contain %d", id)
			}
		}
	})

	t.Run("Steady State Filters Seen", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		seedIndex(store, 3, 2, 1)
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 10:00:00 +01:00"},
			{ID: 2, Datetime: "2026-01-02 11:00:00 +01:00"},
			{ID: 3, Datetime: "2026-01-02 12:00:00 +01:00"},
			{ID: 4, Datetime: "2026-01-02 13:00:00 +01:00"},
			{ID: 5, Datetime: "2026-01-02 14:00:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, nil)

		sum, err := c.Run(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.New != 2 || sum.Written != 2 {
			t.Errorf("expected 2 new and 2 written, got %+v", sum)
		}
		ids := savedIDs(t, store)
		for id := int64(1); id <= 5; id++ {
			if !ids[id] {
				t.Errorf("expected saved index to contain %d", id)
			}
		}
	})

	t.Run("No New Events Writes Nothing", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		before := seedIndex(store, 3, 2, 1)
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 10:00:00 +01:00"},
			{ID: 2, Datetime: "2026-01-02 11:00:00 +01:00"},
			{ID: 3, Datetime: "2026-01-02 12:00:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, nil)

		sum, err := c.Run(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.New != 0 {
			t.Errorf("expected 0 new, got %d", sum.New)
		}
		if len(store.PutNames) != 0 {
			t.Errorf("expected no writes at all, got %v", store.PutNames)
		}
		if !bytes.Equal(store.Objects[MetadataObjectName], before) {
			t.Error("expected recency index to be untouched")
		}
	})

	t.Run("Empty Feed Is A Clean Run", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		feed := &mocks.MockEventFeed{Events: []domain.Event{}}
		c := newCollectorFixture(store, feed, nil)

		sum, err := c.Run(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.Fetched != 0 {
			t.Errorf("expected 0 fetched, got %d", sum.Fetched)
		}
		if len(store.PutNames) != 0 {
			t.Errorf("expected no writes, got %v", store.PutNames)
		}
	})

	t.Run("Feed Failure Aborts", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		feed := &mocks.MockEventFeed{FetchErr: fmt.Errorf("%w: connect timeout", domain.ErrFeedUnreachable)}
		c := newCollectorFixture(store, feed, nil)

		_, err := c.Run(context.Background())

		if !errors.Is(err, domain.ErrFeedUnreachable) {
			t.Errorf("expected ErrFeedUnreachable, got %v", err)
		}
		if len(store.PutNames) != 0 {
			t.Errorf("expected no writes, got %v", store.PutNames)
		}
	})

	t.Run("Corrupt Index Aborts", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		store.Objects[MetadataObjectName] = []byte(`{"seen_ids": [1`)
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 9, Datetime: "2026-01-02 10:00:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, nil)

		_, err := c.Run(context.Background())

		if !errors.Is(err, domain.ErrMetadataCorrupt) {
			t.Errorf("expected ErrMetadataCorrupt, got %v", err)
		}
		if len(store.PutNames) != 0 {
			t.Errorf("expected no writes, got %v", store.PutNames)
		}
	})

	t.Run("Write Failure Preserves Index", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		before := seedIndex(store, 1)
		store.PutErr = fmt.Errorf("%w: service down", domain.ErrStorageUnavailable)
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 10:00:00 +01:00"},
			{ID: 2, Datetime: "2026-01-02 11:00:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, nil)

		_, err := c.Run(context.Background())

		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Errorf("expected ErrStorageUnavailable, got %v", err)
		}
		if !bytes.Equal(store.Objects[MetadataObjectName], before) {
			t.Error("expected recency index to be untouched after a failed write")
		}
		ids := savedIDs(t, store)
		if ids[2] {
			t.Error("expected 2 to stay unseen so the next run retries it")
		}
	})

	t.Run("Skipped Records Still Marked Seen", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 10:00:00 +01:00"},
			{ID: 2, Datetime: "not a timestamp"},
		}}
		c := newCollectorFixture(store, feed, nil)

		sum, err := c.Run(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.Written != 1 || sum.Skipped != 1 {
			t.Errorf("expected 1 written and 1 skipped, got %+v", sum)
		}
		ids := savedIDs(t, store)
		if !ids[1] || !ids[2] {
			t.Errorf("expected both fetched ids to be marked seen, got %v", ids)
		}
	})

	t.Run("Metrics Recorded On Success", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		m := metrics.NewCollectorMetrics()
		feed := &mocks.MockEventFeed{Events: []domain.Event{
			{ID: 1, Datetime: "2026-01-02 10:00:00 +01:00"},
			{ID: 2, Datetime: "2026-01-02 11:00:00 +01:00"},
		}}
		c := newCollectorFixture(store, feed, m)

		if _, err := c.Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")); got != 1 {
			t.Errorf("expected 1 successful run, got %v", got)
		}
		if got := testutil.ToFloat64(m.EventsFetched); got != 2 {
			t.Errorf("expected 2 fetched, got %v", got)
		}
		if got := testutil.ToFloat64(m.EventsWritten); got != 2 {
			t.Errorf("expected 2 written, got %v", got)
		}
		if got := testutil.ToFloat64(m.TrackedIDs); got != 2 {
			t.Errorf("expected 2 tracked ids, got %v", got)
		}
	})

	t.Run("Metrics Recorded On Failure", func(t *testing.T) {
		store := mocks.NewMockObjectStore()
		m := metrics.NewCollectorMetrics()
		feed := &mocks.MockEventFeed{FetchErr: fmt.Errorf("%w: boom", domain.ErrFeedUnreachable)}
		c := newCollectorFixture(store, feed, m)

		if _, err := c.Run(context.Background()); err == nil {
			t.Fatal("expected an error, got nil")
		}
		if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")); got != 1 {
			t.Errorf("expected 1 failed run, got %v", got)
		}
	})
}
