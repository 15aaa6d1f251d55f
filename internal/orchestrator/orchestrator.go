// Package orchestrator provides E2E pipeline orchestration.
// It coordinates, per event slug: ingestion → donation aggregation →
// trade normalization → odds → alignment → reporting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"election-market-lab/internal/alignment"
	"election-market-lab/internal/candidates"
	"election-market-lab/internal/donations"
	"election-market-lab/internal/domain"
	"election-market-lab/internal/ingestion"
	"election-market-lab/internal/normalization"
	"election-market-lab/internal/observability"
	"election-market-lab/internal/polymarket"
	"election-market-lab/internal/reporting"
	"election-market-lab/internal/segments"
	"election-market-lab/internal/storage"
)

// candidateScanLimit caps the distinct candidate values collected for name
// matching. Matching needs the vocabulary, not the full census.
const candidateScanLimit = 50_000

// Orchestrator coordinates the pipeline across configured event slugs.
// Each slug is independent; one slug failing never aborts the others.
type Orchestrator struct {
	// Stores
	tradeStore  storage.TradeStore
	donStore    storage.DonationStore
	oddsStore   storage.OddsSeriesStore
	periodStore storage.PeriodSeriesStore

	// Inputs
	events      []domain.EventConfig
	dataDir     string
	donationCSV string

	// Outputs
	reporter *reporting.Generator

	// Options
	workers int
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	TradeStore        storage.TradeStore
	DonationStore     storage.DonationStore
	OddsSeriesStore   storage.OddsSeriesStore
	PeriodSeriesStore storage.PeriodSeriesStore

	// Inputs
	Events      []domain.EventConfig
	DataDir     string
	DonationCSV string

	// Outputs
	Reporter *reporting.Generator

	// Options
	Workers int
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		tradeStore:  opts.TradeStore,
		donStore:    opts.DonationStore,
		oddsStore:   opts.OddsSeriesStore,
		periodStore: opts.PeriodSeriesStore,
		events:      opts.Events,
		dataDir:     opts.DataDir,
		donationCSV: opts.DonationCSV,
		reporter:    opts.Reporter,
		workers:     workers,
		verbose:     opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	SlugsProcessed   int
	MarketsProcessed int
	OddsPoints       int
	PeriodPoints     int
	AlignedRows      int
	Errors           []string
}

// Run executes the pipeline over all configured slugs with a bounded worker
// pool. Per-slug failures are collected in RunResult.Errors.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	jobs := make(chan domain.EventConfig)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range jobs {
				start := time.Now()
				summary, err := o.processSlug(ctx, event)

				mu.Lock()
				status := "ok"
				if err != nil {
					status = "error"
					result.Errors = append(result.Errors, fmt.Sprintf("slug %s: %v", event.Slug, err))
				}
				if summary != nil {
					result.SlugsProcessed++
					result.MarketsProcessed += summary.markets
					result.OddsPoints += summary.oddsPoints
					result.PeriodPoints += summary.periodPoints
					result.AlignedRows += summary.alignedRows
					result.Errors = append(result.Errors, summary.errors...)
				}
				mu.Unlock()

				observability.RecordSlugRun(event.Slug, status, time.Since(start).Seconds())
			}
		}()
	}

	for _, event := range o.events {
		jobs <- event
	}
	close(jobs)
	wg.Wait()

	o.log("Pipeline completed: %d slugs, %d markets, %d odds points, %d period points, %d aligned rows (%d errors)",
		result.SlugsProcessed, result.MarketsProcessed, result.OddsPoints,
		result.PeriodPoints, result.AlignedRows, len(result.Errors))

	return result, nil
}

// slugSummary accumulates per-slug counters and non-fatal errors.
type slugSummary struct {
	markets      int
	oddsPoints   int
	periodPoints int
	alignedRows  int
	errors       []string
}

// processSlug runs the full pipeline for one event slug.
func (o *Orchestrator) processSlug(ctx context.Context, event domain.EventConfig) (*slugSummary, error) {
	slug := event.Slug
	slugDir := filepath.Join(o.dataDir, slug)
	summary := &slugSummary{}

	o.log("[%s] loading event metadata", slug)
	meta, err := polymarket.LoadEventMetadata(filepath.Join(slugDir, "event.json"))
	if err != nil {
		return nil, fmt.Errorf("load event metadata: %w", err)
	}

	prices, err := o.loadPrices(slugDir)
	if err != nil {
		observability.RecordIngestionError("prices")
		summary.errors = append(summary.errors, fmt.Sprintf("slug %s: load prices: %v", slug, err))
	}

	volumes, err := o.loadVolumes(slugDir)
	if err != nil {
		observability.RecordIngestionError("volumes")
		summary.errors = append(summary.errors, fmt.Sprintf("slug %s: load volumes: %v", slug, err))
	}

	// Phase 1: donations
	donationRows, err := o.loadDonations(slug, event, meta)
	if err != nil {
		return summary, fmt.Errorf("load donations: %w", err)
	}

	filtered := donations.Filter(donationRows, donationWindow(prices, meta))
	o.log("[%s] %d donation rows after filtering", slug, len(filtered))

	if len(filtered) > 0 {
		if err := o.donStore.InsertBulk(ctx, filtered); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return summary, fmt.Errorf("store donations: %w", err)
		}
	}

	donCumDaily, err := o.runDonationSeries(ctx, slug, filtered, summary)
	if err != nil {
		return summary, err
	}

	// Phase 2: per-market normalization and odds
	marketOdds, closingDates, err := o.runMarkets(ctx, slug, slugDir, volumes, summary)
	if err != nil {
		return summary, err
	}

	// Phase 3: alignment on the reference market (lexically first)
	o.runAlignment(slug, event, meta, prices, donCumDaily, marketOdds, closingDates, summary)

	return summary, nil
}

// loadDonations streams the national donation file filtered to this event's
// candidates. The keep predicate comes from matching market titles against the
// file's candidate vocabulary; when nothing matches, every DEM/REP row is kept.
func (o *Orchestrator) loadDonations(slug string, event domain.EventConfig, meta *polymarket.Event) ([]*domain.Donation, error) {
	keep, err := o.buildKeepPredicate(event, meta)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(o.donationCSV)
	if err != nil {
		return nil, fmt.Errorf("open donation file: %w", err)
	}
	defer f.Close()

	result, err := ingestion.ReadDonations(f, slug, keep)
	if err != nil {
		observability.RecordIngestionError("donations")
		return nil, err
	}
	observability.RecordDonationRows(result.ScannedRows, len(result.Donations))
	o.log("[%s] scanned %d donation rows, kept %d (skipped %d malformed)",
		slug, result.ScannedRows, len(result.Donations), result.SkippedRows)

	return result.Donations, nil
}

func (o *Orchestrator) buildKeepPredicate(event domain.EventConfig, meta *polymarket.Event) (func(string) bool, error) {
	tokens := candidateTokens(event, meta)
	if len(tokens) == 0 {
		return nil, nil
	}

	f, err := os.Open(o.donationCSV)
	if err != nil {
		return nil, fmt.Errorf("open donation file: %w", err)
	}
	defer f.Close()

	vocabulary, err := ingestion.ScanCandidates(f, candidateScanLimit)
	if err != nil {
		return nil, fmt.Errorf("scan donation candidates: %w", err)
	}

	matcher := candidates.NewMatcher(candidates.MatchTokens(tokens, vocabulary))
	if matcher.Empty() {
		return nil, nil
	}
	return matcher.Keep, nil
}

// candidateTokens derives last-name tokens from configured candidate names and
// event metadata, per-market titles first, free text as fallback.
func candidateTokens(event domain.EventConfig, meta *polymarket.Event) []string {
	var tokens []string
	for _, name := range []string{event.Democrat, event.Republican} {
		fields := strings.Fields(name)
		if len(fields) == 0 {
			continue
		}
		last := candidates.NormalizeName(fields[len(fields)-1])
		if len(last) >= 2 {
			tokens = append(tokens, last)
		}
	}

	if meta == nil {
		return tokens
	}

	var titles, questions, outcomes []string
	for i := range meta.Markets {
		m := &meta.Markets[i]
		if m.GroupItemTitle != "" {
			titles = append(titles, m.GroupItemTitle)
		}
		questions = append(questions, m.Question)
		outcomes = append(outcomes, m.OutcomeLabels()...)
	}

	titleTokens := candidates.TokensFromTitles(titles)
	if len(titleTokens) == 0 {
		titleTokens = candidates.TokensFromFreeText(meta.Title, questions, outcomes)
	}
	return append(tokens, titleTokens...)
}

// runDonationSeries computes and stores both variants at every granularity,
// with donor tiers. Returns the daily cumulative series for alignment reuse.
func (o *Orchestrator) runDonationSeries(ctx context.Context, slug string, filtered []*domain.Donation, summary *slugSummary) (map[domain.Granularity][]*domain.PeriodPoint, error) {
	donorAssign := segments.SegmentDonors(filtered)
	var lookup func(string) domain.Segment
	if donorAssign != nil {
		lookup = donorAssign.Lookup
	}

	cumulative := make(map[domain.Granularity][]*domain.PeriodPoint, len(domain.Granularities))
	for _, g := range domain.Granularities {
		for _, v := range []domain.Variant{domain.VariantCumulative, domain.VariantNonCumulative} {
			points := donations.BySegment(filtered, g, v, lookup)
			for _, p := range points {
				p.EventSlug = slug
			}
			if v == domain.VariantCumulative {
				cumulative[g] = points
			}

			if len(points) > 0 {
				if err := o.periodStore.InsertBulk(ctx, points); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
					return nil, fmt.Errorf("store %s/%s period series: %w", g, v, err)
				}
			}
			observability.RecordPeriodPoints(string(g), string(v), len(points))
			summary.periodPoints += len(points)

			if o.reporter != nil {
				if err := o.reporter.WritePeriodSeries(slug, g, v, points); err != nil {
					summary.errors = append(summary.errors, fmt.Sprintf("slug %s: write %s/%s series: %v", slug, g, v, err))
				}
			}
		}
	}
	return cumulative, nil
}

// runMarkets ingests every per-market trades CSV under <slug>/trades/ and
// normalizes each market into its odds series. Markets fail independently.
func (o *Orchestrator) runMarkets(ctx context.Context, slug, slugDir string, volumes []*domain.UserVolume, summary *slugSummary) (map[string][]*domain.OddsPoint, map[string]time.Time, error) {
	marketFiles, err := listMarketFiles(filepath.Join(slugDir, "trades"))
	if err != nil {
		return nil, nil, fmt.Errorf("list market files: %w", err)
	}

	runner := normalization.NewRunner(o.tradeStore, o.oddsStore, volumes)
	marketOdds := make(map[string][]*domain.OddsPoint)
	closingDates := make(map[string]time.Time)

	for _, file := range marketFiles {
		marketID := strings.TrimSuffix(filepath.Base(file), ".csv")

		if err := o.ingestMarket(ctx, file, marketID); err != nil {
			observability.RecordIngestionError("trades")
			summary.errors = append(summary.errors, fmt.Sprintf("slug %s: ingest market %s: %v", slug, marketID, err))
			continue
		}

		res, err := runner.NormalizeMarket(ctx, marketID)
		if err != nil {
			if errors.Is(err, normalization.ErrNoTrades) {
				o.log("[%s] market %s has no usable trades, skipping", slug, marketID)
				continue
			}
			if errors.Is(err, storage.ErrDuplicateKey) {
				o.log("[%s] market %s already normalized, skipping", slug, marketID)
				continue
			}
			summary.errors = append(summary.errors, fmt.Sprintf("slug %s: normalize market %s: %v", slug, marketID, err))
			continue
		}

		summary.markets++
		summary.oddsPoints += len(res.OddsPoints)
		observability.RecordOddsPoints(len(res.OddsPoints))
		observability.RecordSegmentSource(string(res.SegmentSource))
		marketOdds[marketID] = res.OddsPoints
		closingDates[marketID] = res.ClosingDate

		if o.reporter != nil {
			if err := o.reporter.WriteOdds(slug, marketID, res.OddsPoints); err != nil {
				summary.errors = append(summary.errors, fmt.Sprintf("slug %s: write odds for %s: %v", slug, marketID, err))
			}
		}
	}

	return marketOdds, closingDates, nil
}

// ingestMarket parses one trades CSV and bulk-inserts new rows. An existing
// trade_id means the file was already ingested; that is not an error.
func (o *Orchestrator) ingestMarket(ctx context.Context, path, marketID string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trades file: %w", err)
	}
	defer f.Close()

	result, err := ingestion.ReadTrades(f, marketID)
	if err != nil {
		return err
	}
	observability.RecordTradeRows(len(result.Trades), result.SkippedRows)

	if len(result.Trades) == 0 {
		return nil
	}
	if err := o.tradeStore.InsertBulk(ctx, result.Trades); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("store trades: %w", err)
	}
	return nil
}

// runAlignment builds the aligned summary at every granularity, anchored to
// the event's reference market: the lexically first market with odds.
func (o *Orchestrator) runAlignment(slug string, event domain.EventConfig, meta *polymarket.Event, prices []*domain.PricePoint, donCum map[domain.Granularity][]*domain.PeriodPoint, marketOdds map[string][]*domain.OddsPoint, closingDates map[string]time.Time, summary *slugSummary) {
	refMarket, ok := referenceMarket(marketOdds)
	var odds []*domain.OddsPoint
	var closing time.Time
	if ok {
		odds = marketOdds[refMarket]
		closing = closingDates[refMarket]
	}

	winning := polymarket.WinningSideDem(meta, event.Democrat)

	for _, g := range domain.Granularities {
		cumSeries := donCum[g]
		nonCum := nonCumulativeFromCumulative(cumSeries)

		rows := alignment.Align(alignment.Inputs{
			DonationCumulative:    cumSeries,
			DonationNonCumulative: nonCum,
			Odds:                  odds,
			Prices:                prices,
			ClosingDate:           closing,
			Granularity:           g,
			DemocratName:          event.Democrat,
		})

		observability.RecordAlignedRows(string(g), len(rows))
		summary.alignedRows += len(rows)

		if o.reporter != nil {
			if err := o.reporter.WriteAligned(slug, g, rows, winning); err != nil {
				summary.errors = append(summary.errors, fmt.Sprintf("slug %s: write aligned %s: %v", slug, g, err))
			}
		}
	}
}

// nonCumulativeFromCumulative rebuilds the period-local all-segment ratio from
// the cumulative series' period totals, avoiding a second aggregation pass.
func nonCumulativeFromCumulative(cumulative []*domain.PeriodPoint) []*domain.PeriodPoint {
	var out []*domain.PeriodPoint
	for _, p := range cumulative {
		if p.Segment != domain.SegmentAll {
			continue
		}
		np := &domain.PeriodPoint{
			EventSlug:   p.EventSlug,
			Granularity: p.Granularity,
			Variant:     domain.VariantNonCumulative,
			PeriodKey:   p.PeriodKey,
			Segment:     p.Segment,
			PeriodDem:   p.PeriodDem,
			PeriodRep:   p.PeriodRep,
		}
		if denom := p.PeriodDem + p.PeriodRep; denom > 0 {
			ratio := p.PeriodDem / denom
			np.DemRatio = &ratio
		}
		out = append(out, np)
	}
	return out
}

// referenceMarket picks the lexically first market that produced odds.
func referenceMarket(marketOdds map[string][]*domain.OddsPoint) (string, bool) {
	var ids []string
	for id, points := range marketOdds {
		if len(points) > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	sort.Strings(ids)
	return ids[0], true
}

func (o *Orchestrator) loadPrices(slugDir string) ([]*domain.PricePoint, error) {
	f, err := os.Open(filepath.Join(slugDir, "prices.csv"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingestion.ReadPrices(f)
}

func (o *Orchestrator) loadVolumes(slugDir string) ([]*domain.UserVolume, error) {
	f, err := os.Open(filepath.Join(slugDir, "volumes.csv"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingestion.ReadVolumes(f)
}

// donationWindow bounds donations to the reference-price range: from the
// earliest price observation to the event's end date. Missing data leaves the
// corresponding side unbounded.
func donationWindow(prices []*domain.PricePoint, meta *polymarket.Event) donations.Window {
	var w donations.Window

	for _, p := range prices {
		d := time.Unix(p.Timestamp, 0).UTC()
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if w.Start == nil || d.Before(*w.Start) {
			start := d
			w.Start = &start
		}
	}

	if meta != nil {
		var latest *int64
		for i := range meta.Markets {
			if ts := polymarket.ISOToUnix(meta.Markets[i].EndDate); ts != nil {
				if latest == nil || *ts > *latest {
					latest = ts
				}
			}
		}
		if latest != nil {
			end := time.Unix(*latest, 0).UTC()
			end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
			w.End = &end
		}
	}

	return w
}

// listMarketFiles returns the .csv files under dir sorted by name. A missing
// directory means the slug has no trade data, not an error.
func listMarketFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
