// Package main provides the pipeline entry point.
// Executes, per configured event: ingestion → donation aggregation →
// trade normalization → odds → alignment → reporting.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"election-market-lab/internal/config"
	"election-market-lab/internal/observability"
	"election-market-lab/internal/orchestrator"
	"election-market-lab/internal/reporting"
	"election-market-lab/internal/storage"
	"election-market-lab/internal/storage/clickhouse"
	"election-market-lab/internal/storage/memory"
	"election-market-lab/internal/storage/migrations"
	"election-market-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	verbose := flag.Bool("verbose", false, "Verbose output")
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

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
			fmt.Fprintf(os.Stderr, "Metrics server error: %v\n", err)
		}
	}()

	stores, cleanup, err := wireStores(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Storage error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	fmt.Println("=== Election Market Pipeline ===")
	orch := orchestrator.New(orchestrator.Options{
		TradeStore:        stores.tradeStore,
		DonationStore:     stores.donationStore,
		OddsSeriesStore:   stores.oddsStore,
		PeriodSeriesStore: stores.periodStore,
		Events:            cfg.Events,
		DataDir:           cfg.Data.Dir,
		DonationCSV:       cfg.Data.DonationCSV,
		Reporter:          reporting.NewGenerator(cfg.Output.Dir),
		Workers:           cfg.Workers,
		Verbose:           *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Orchestrator error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pipeline completed:\n")
	fmt.Printf("  Slugs: %d\n", result.SlugsProcessed)
	fmt.Printf("  Markets: %d\n", result.MarketsProcessed)
	fmt.Printf("  Odds points: %d\n", result.OddsPoints)
	fmt.Printf("  Period points: %d\n", result.PeriodPoints)
	fmt.Printf("  Aligned rows: %d\n", result.AlignedRows)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
		os.Exit(1)
	}

	fmt.Printf("\nOutputs written under %s/\n", cfg.Output.Dir)
}

// pipelineStores holds the four store interfaces the orchestrator needs.
type pipelineStores struct {
	tradeStore    storage.TradeStore
	donationStore storage.DonationStore
	oddsStore     storage.OddsSeriesStore
	periodStore   storage.PeriodSeriesStore
}

// wireStores connects the configured backends: PostgreSQL for row data,
// ClickHouse for series, memory when a DSN is absent. Migrations run on
// whichever database backends are configured.
func wireStores(ctx context.Context, cfg *config.Config) (*pipelineStores, func(), error) {
	stores := &pipelineStores{
		tradeStore:    memory.NewTradeStore(),
		donationStore: memory.NewDonationStore(),
		oddsStore:     memory.NewOddsSeriesStore(),
		periodStore:   memory.NewPeriodSeriesStore(),
	}
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, cleanup, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.tradeStore = postgres.NewTradeStore(pool)
		stores.donationStore = postgres.NewDonationStore(pool)
	}

	if dsn := cfg.Storage.ClickHouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			return nil, cleanup, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })

		stores.oddsStore = clickhouse.NewOddsSeriesStore(conn)
		stores.periodStore = clickhouse.NewPeriodSeriesStore(conn)
	}

	return stores, cleanup, nil
}
