// Package main fetches event metadata and per-token price histories from
// Polymarket and lays them out under the data directory, so pipeline runs
// work offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"election-market-lab/internal/config"
	"election-market-lab/internal/polymarket"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	onlySlug := flag.String("slug", "", "Fetch a single slug instead of all configured events")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling fetch...\n", sig)
		cancel()
	}()

	var opts []polymarket.ClientOption
	if cfg.Polymarket.GammaBase != "" {
		opts = append(opts, polymarket.WithGammaBase(cfg.Polymarket.GammaBase))
	}
	if cfg.Polymarket.ClobBase != "" {
		opts = append(opts, polymarket.WithClobBase(cfg.Polymarket.ClobBase))
	}
	opts = append(opts,
		polymarket.WithTimeout(time.Duration(cfg.Polymarket.TimeoutSeconds)*time.Second),
		polymarket.WithRateLimitSleep(time.Duration(cfg.Polymarket.RateLimitMs)*time.Millisecond),
	)
	client := polymarket.NewClient(opts...)

	failed := 0
	for _, event := range cfg.Events {
		if *onlySlug != "" && event.Slug != *onlySlug {
			continue
		}
		if err := fetchSlug(ctx, client, cfg.Data.Dir, event.Slug); err != nil {
			fmt.Fprintf(os.Stderr, "Fetch %s failed: %v\n", event.Slug, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// fetchSlug pulls one event's metadata and price histories into
// <dataDir>/<slug>/{event.json,prices.csv}.
func fetchSlug(ctx context.Context, client *polymarket.Client, dataDir, slug string) error {
	fmt.Printf("Fetching %s...\n", slug)

	event, err := client.FetchEventBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("fetch event: %w", err)
	}

	slugDir := filepath.Join(dataDir, slug)
	if err := os.MkdirAll(slugDir, 0755); err != nil {
		return fmt.Errorf("create slug dir: %w", err)
	}

	if err := polymarket.SaveEventMetadata(event, filepath.Join(slugDir, "event.json")); err != nil {
		return err
	}

	series, err := client.FetchAllPriceHistories(ctx, event)
	if err != nil {
		return fmt.Errorf("fetch price histories: %w", err)
	}

	path := filepath.Join(slugDir, "prices.csv")
	if err := writePricesCSV(path, series); err != nil {
		return err
	}

	points := 0
	for _, s := range series {
		points += len(s.History)
	}
	fmt.Printf("  %d markets, %d token series, %d price points\n",
		len(event.Markets), len(series), points)

	return nil
}

// writePricesCSV renders token series in the layout the pipeline ingests:
// timestamp, outcome_label, price.
func writePricesCSV(path string, series []*polymarket.TokenSeries) error {
	var sb strings.Builder
	sb.WriteString("timestamp,outcome_label,price\n")
	for _, s := range series {
		label := csvEscape(s.OutcomeLabel)
		for _, p := range s.History {
			sb.WriteString(fmt.Sprintf("%d,%s,%.6f\n", p.Timestamp, label, p.Price))
		}
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write prices csv: %w", err)
	}
	return nil
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
