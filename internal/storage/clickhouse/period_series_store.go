package clickhouse

import (
	"context"
	"fmt"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// PeriodSeriesStore implements storage.PeriodSeriesStore using ClickHouse.
// DemRatio is Nullable(Float64): a period with no major-party donations in
// the variant's scope stores NULL.
type PeriodSeriesStore struct {
	conn *Conn
}

// NewPeriodSeriesStore creates a new PeriodSeriesStore.
func NewPeriodSeriesStore(conn *Conn) *PeriodSeriesStore {
	return &PeriodSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PeriodSeriesStore = (*PeriodSeriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (event_slug, granularity, variant, period_key, segment).
func (s *PeriodSeriesStore) InsertBulk(ctx context.Context, points []*domain.PeriodPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		eventSlug   string
		granularity domain.Granularity
		variant     domain.Variant
		periodKey   string
		segment     domain.Segment
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.EventSlug == "" || p.PeriodKey == "" || p.Segment == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.EventSlug, p.Granularity, p.Variant, p.PeriodKey, p.Segment}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO period_series (
			event_slug, granularity, variant, period_key, segment,
			period_dem, period_rep, cum_dem, cum_rep, dem_ratio
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.EventSlug, string(p.Granularity), string(p.Variant), p.PeriodKey, string(p.Segment),
			p.PeriodDem, p.PeriodRep, p.CumDem, p.CumRep, p.DemRatio,
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

// GetBySeries retrieves one series, ordered by (period_key ASC, segment ASC).
func (s *PeriodSeriesStore) GetBySeries(ctx context.Context, eventSlug string, g domain.Granularity, v domain.Variant) ([]*domain.PeriodPoint, error) {
	query := `
		SELECT event_slug, granularity, variant, period_key, segment,
		       period_dem, period_rep, cum_dem, cum_rep, dem_ratio
		FROM period_series
		WHERE event_slug = ? AND granularity = ? AND variant = ?
		ORDER BY period_key ASC, segment ASC
	`

	rows, err := s.conn.Query(ctx, query, eventSlug, string(g), string(v))
	if err != nil {
		return nil, fmt.Errorf("query by series: %w", err)
	}
	defer rows.Close()

	return scanPeriodSeries(rows)
}

// exists checks if a point with the given key exists.
func (s *PeriodSeriesStore) exists(ctx context.Context, p *domain.PeriodPoint) (bool, error) {
	query := `
		SELECT count(*) FROM period_series
		WHERE event_slug = ? AND granularity = ? AND variant = ?
		  AND period_key = ? AND segment = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query,
		p.EventSlug, string(p.Granularity), string(p.Variant), p.PeriodKey, string(p.Segment),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPeriodSeries scans multiple rows into a slice.
func scanPeriodSeries(rows chRows) ([]*domain.PeriodPoint, error) {
	var points []*domain.PeriodPoint

	for rows.Next() {
		var p domain.PeriodPoint
		var granularity, variant, segment string

		err := rows.Scan(
			&p.EventSlug, &granularity, &variant, &p.PeriodKey, &segment,
			&p.PeriodDem, &p.PeriodRep, &p.CumDem, &p.CumRep, &p.DemRatio,
		)
		if err != nil {
			return nil, fmt.Errorf("scan period series row: %w", err)
		}

		p.Granularity = domain.Granularity(granularity)
		p.Variant = domain.Variant(variant)
		p.Segment = domain.Segment(segment)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period series rows: %w", err)
	}

	return points, nil
}
