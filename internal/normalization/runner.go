package normalization

import (
	"context"
	"fmt"
	"time"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/odds"
	"election-market-lab/internal/segments"
	"election-market-lab/internal/storage"
)

// Runner materializes the odds series for one market from stored raw trades.
type Runner struct {
	tradeStore storage.TradeStore
	oddsStore  storage.OddsSeriesStore

	// Optional precomputed lifetime volumes; when empty the segmenter derives
	// volumes from the market's own trades.
	volumes []*domain.UserVolume
}

// NewRunner creates a new normalization runner.
func NewRunner(tradeStore storage.TradeStore, oddsStore storage.OddsSeriesStore, volumes []*domain.UserVolume) *Runner {
	return &Runner{
		tradeStore: tradeStore,
		oddsStore:  oddsStore,
		volumes:    volumes,
	}
}

// MarketResult summarizes one market's normalization.
type MarketResult struct {
	ClosingDate   time.Time
	SkippedRows   int
	OddsPoints    []*domain.OddsPoint
	SegmentSource segments.Source
}

// NormalizeMarket processes a single market end to end:
//  1. Load raw trades from the store
//  2. Normalize into per-user events anchored to the closing date
//  3. Build daily flows and accumulate positions (forward-filled)
//  4. Segment users (volume table, else derived from trades)
//  5. Aggregate investment-weighted odds -> store
//
// Returns ErrNoTrades when the market has no usable rows; callers skip it.
func (r *Runner) NormalizeMarket(ctx context.Context, marketID string) (*MarketResult, error) {
	trades, err := r.tradeStore.GetByMarketID(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load trades for market %s: %w", marketID, err)
	}

	norm, err := NormalizeTrades(trades)
	if err != nil {
		return nil, err
	}

	flows := BuildDailyFlows(norm.Events)
	positions := AccumulatePositions(flows)
	assign := segments.Resolve(r.volumes, trades)
	points := odds.Aggregate(marketID, positions, assign)

	if len(points) > 0 {
		if err := r.oddsStore.InsertBulk(ctx, points); err != nil {
			return nil, fmt.Errorf("store odds series for market %s: %w", marketID, err)
		}
	}

	return &MarketResult{
		ClosingDate:   norm.ClosingDate,
		SkippedRows:   norm.SkippedRows,
		OddsPoints:    points,
		SegmentSource: assign.Source,
	}, nil
}
