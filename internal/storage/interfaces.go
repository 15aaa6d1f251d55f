// Package storage defines the store interfaces shared by the in-memory,
// PostgreSQL, and ClickHouse backends. Raw inputs (trades, donations) live in
// PostgreSQL; derived series (odds, period ratios) in ClickHouse.
package storage

import (
	"context"

	"election-market-lab/internal/domain"
)

// TradeStore provides access to raw trade rows, keyed by market.
type TradeStore interface {
	// InsertBulk adds multiple trades atomically. Returns ErrDuplicateKey if any
	// trade_id already exists (re-ingestion of the same file is a no-op for the
	// caller, which skips on duplicate).
	InsertBulk(ctx context.Context, trades []*domain.RawTrade) error

	// GetByMarketID retrieves all trades for a market, ordered by trade_id ASC.
	GetByMarketID(ctx context.Context, marketID string) ([]*domain.RawTrade, error)

	// ListMarkets returns the distinct market IDs present, sorted ASC.
	ListMarkets(ctx context.Context) ([]string, error)
}

// DonationStore provides access to per-event filtered donation rows.
type DonationStore interface {
	// InsertBulk adds multiple donations. Duplicate rows are legitimate in the
	// source data and are stored as-is.
	InsertBulk(ctx context.Context, donations []*domain.Donation) error

	// GetByEventSlug retrieves all donations for an event, ordered by
	// (date ASC, donor ASC).
	GetByEventSlug(ctx context.Context, eventSlug string) ([]*domain.Donation, error)
}

// OddsSeriesStore provides access to the per-(day_offset, segment) odds series.
type OddsSeriesStore interface {
	// InsertBulk adds multiple points. Fails the entire batch with
	// ErrDuplicateKey on a duplicate (market_id, day_offset, segment).
	InsertBulk(ctx context.Context, points []*domain.OddsPoint) error

	// GetByMarketID retrieves all points for a market, ordered by
	// (day_offset ASC, segment ASC).
	GetByMarketID(ctx context.Context, marketID string) ([]*domain.OddsPoint, error)
}

// PeriodSeriesStore provides access to donation ratio series.
type PeriodSeriesStore interface {
	// InsertBulk adds multiple points. Fails the entire batch with
	// ErrDuplicateKey on a duplicate
	// (event_slug, granularity, variant, period_key, segment).
	InsertBulk(ctx context.Context, points []*domain.PeriodPoint) error

	// GetBySeries retrieves one series, ordered by (period_key ASC, segment ASC).
	GetBySeries(ctx context.Context, eventSlug string, g domain.Granularity, v domain.Variant) ([]*domain.PeriodPoint, error)
}
