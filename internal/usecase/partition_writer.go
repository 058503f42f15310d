package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// PartitionWriter persists new events as NDJSON objects partitioned by the
// event's own calendar date.
type PartitionWriter struct {
	store  domain.ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

// NewPartitionWriter creates a writer targeting the events/ prefix.
func NewPartitionWriter(store domain.ObjectStore, logger *slog.Logger) *PartitionWriter {
	return &PartitionWriter{
		store:  store,
		logger: logger.With("component", "partition_writer"),
		now:    time.Now,
	}
}

// WriteNew groups events by their YYYY/MM/DD partition and writes one NDJSON
// object per partition, all sharing a single run timestamp in their names.
// A record whose timestamp cannot be parsed is logged and skipped, never
// fatal. Returns how many events were written and how many were skipped.
func (w *PartitionWriter) WriteNew(ctx context.Context, events []domain.Event) (int, int, error) {
	if len(events) == 0 {
		return 0, 0, nil
	}

	var written, skipped int
	groups := make(map[string][]domain.Event)
	for _, e := range events {
		key, perr := e.PartitionKey()
		if perr != nil {
			w.logger.Warn("skipping event with unusable timestamp", "event_id", e.ID, "datetime", e.Datetime, "error", perr)
			skipped++
			continue
		}
		groups[key] = append(groups[key], e)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	runStamp := w.now().Unix()
	for _, key := range keys {
		batch := groups[key]
		name := fmt.Sprintf("events/%s/events-%d.jsonl", key, runStamp)
		data, err := encodeNDJSON(batch)
		if err != nil {
			return written, skipped, fmt.Errorf("encode partition %s: %w", key, err)
		}
		if err := w.store.Put(ctx, name, data); err != nil {
			return written, skipped, fmt.Errorf("write partition %s: %w", name, err)
		}
		written += len(batch)
		w.logger.Info("wrote partition", "object", name, "events", len(batch))
	}
	return written, skipped, nil
}

// encodeNDJSON renders one JSON document per line. HTML escaping is off so
// Swedish text in summaries and place names stays literal UTF-8.
func encodeNDJSON(events []domain.Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
