package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/acedergren/polisen-events-collector/internal/adapter/feed"
)

func main() {
	feedURL := flag.String("url", "https://polisen.se/api/events", "Feed URL to probe")
	contact := flag.String("contact", "your-email@example.com", "Contact email for the User-Agent header")
	fetches := flag.Int("n", 1, "Number of fetches")
	spacing := flag.Duration("spacing", 10*time.Second, "Minimum delay between fetches")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	raw := flag.Bool("raw", false, "Print every event as a JSON line on stdout")
	flag.Parse()

	log.Printf("Probing %s", *feedURL)
	log.Printf("Fetches: %d, Spacing: %s, Timeout: %s", *fetches, *spacing, *timeout)

	userAgent := fmt.Sprintf("PolisenEventsCollector/1.0 (Feed Probe; Contact: %s)", *contact)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := feed.NewClient(*feedURL, userAgent, *timeout, *spacing, logger)

	budget := time.Duration(*fetches)*(*spacing) + *timeout + time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	seen := make(map[int64]struct{})
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	for i := 0; i < *fetches; i++ {
		events, err := client.Fetch(ctx)
		if err != nil {
			log.Fatalf("Fetch %d failed: %v", i+1, err)
		}

		fresh := 0
		unusable := 0
		for _, e := range events {
			if _, ok := seen[e.ID]; !ok {
				seen[e.ID] = struct{}{}
				fresh++
			}
			if _, err := e.OccurredAt(); err != nil {
				unusable++
				log.Printf("Event %d has an unusable timestamp: %q", e.ID, e.Datetime)
			}
			if *raw {
				_ = enc.Encode(e)
			}
		}
		log.Printf("Fetch %d: %d events, %d unseen, %d unusable timestamps", i+1, len(events), fresh, unusable)
	}

	log.Printf("Done: %d distinct events across %d fetches", len(seen), *fetches)
}
