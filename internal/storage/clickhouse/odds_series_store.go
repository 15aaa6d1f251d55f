package clickhouse

import (
	"context"
	"fmt"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// OddsSeriesStore implements storage.OddsSeriesStore using ClickHouse.
// Odds is Nullable(Float64): a zero-denominator day stores NULL, not 0.
type OddsSeriesStore struct {
	conn *Conn
}

// NewOddsSeriesStore creates a new OddsSeriesStore.
func NewOddsSeriesStore(conn *Conn) *OddsSeriesStore {
	return &OddsSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OddsSeriesStore = (*OddsSeriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (market_id, day_offset, segment).
func (s *OddsSeriesStore) InsertBulk(ctx context.Context, points []*domain.OddsPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		marketID  string
		dayOffset int
		segment   domain.Segment
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.MarketID == "" || p.Segment == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.MarketID, p.DayOffset, p.Segment}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.MarketID, p.DayOffset, p.Segment)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO odds_series (
			market_id, day_offset, segment, agg_yes, agg_no, odds
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.MarketID, int32(p.DayOffset), string(p.Segment),
			p.AggYes, p.AggNo, p.Odds,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMarketID retrieves all points for a market, ordered by
// (day_offset ASC, segment ASC).
func (s *OddsSeriesStore) GetByMarketID(ctx context.Context, marketID string) ([]*domain.OddsPoint, error) {
	query := `
		SELECT market_id, day_offset, segment, agg_yes, agg_no, odds
		FROM odds_series
		WHERE market_id = ?
		ORDER BY day_offset ASC, segment ASC
	`

	rows, err := s.conn.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("query by market id: %w", err)
	}
	defer rows.Close()

	return scanOddsSeries(rows)
}

// exists checks if a point with the given key exists.
func (s *OddsSeriesStore) exists(ctx context.Context, marketID string, dayOffset int, segment domain.Segment) (bool, error) {
	query := `
		SELECT count(*) FROM odds_series
		WHERE market_id = ? AND day_offset = ? AND segment = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, marketID, int32(dayOffset), string(segment)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanOddsSeries scans multiple rows into a slice.
func scanOddsSeries(rows chRows) ([]*domain.OddsPoint, error) {
	var points []*domain.OddsPoint

	for rows.Next() {
		var p domain.OddsPoint
		var dayOffset int32
		var segment string

		err := rows.Scan(
			&p.MarketID, &dayOffset, &segment,
			&p.AggYes, &p.AggNo, &p.Odds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan odds series row: %w", err)
		}

		p.DayOffset = int(dayOffset)
		p.Segment = domain.Segment(segment)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate odds series rows: %w", err)
	}

	return points, nil
}
