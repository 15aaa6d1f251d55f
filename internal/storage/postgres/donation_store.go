package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// DonationStore implements storage.DonationStore using PostgreSQL. The table
// carries no unique key: duplicate rows are legitimate source data.
type DonationStore struct {
	pool *Pool
}

// NewDonationStore creates a new DonationStore.
func NewDonationStore(pool *Pool) *DonationStore {
	return &DonationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DonationStore = (*DonationStore)(nil)

// InsertBulk adds multiple donations atomically.
func (s *DonationStore) InsertBulk(ctx context.Context, donations []*domain.Donation) error {
	if len(donations) == 0 {
		return nil
	}

	for _, d := range donations {
		if d == nil || d.EventSlug == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO donations (
			event_slug, donor, party, candidate, donated_at, amount_usd
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, d := range donations {
		_, err := tx.Exec(ctx, query,
			d.EventSlug,
			d.Donor,
			d.Party,
			d.Candidate,
			d.Date,
			d.AmountUSD,
		)
		if err != nil {
			return fmt.Errorf("insert donation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByEventSlug retrieves all donations for an event, ordered by
// (date ASC, donor ASC).
func (s *DonationStore) GetByEventSlug(ctx context.Context, eventSlug string) ([]*domain.Donation, error) {
	query := `
		SELECT event_slug, donor, party, candidate, donated_at, amount_usd
		FROM donations
		WHERE event_slug = $1
		ORDER BY donated_at ASC, donor ASC
	`

	rows, err := s.pool.Query(ctx, query, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("get donations by event slug: %w", err)
	}
	defer rows.Close()

	return scanDonations(rows)
}

// scanDonations scans multiple rows into a slice of Donation.
func scanDonations(rows pgx.Rows) ([]*domain.Donation, error) {
	var donations []*domain.Donation

	for rows.Next() {
		var d domain.Donation

		err := rows.Scan(
			&d.EventSlug,
			&d.Donor,
			&d.Party,
			&d.Candidate,
			&d.Date,
			&d.AmountUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan donation row: %w", err)
		}

		donations = append(donations, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donation rows: %w", err)
	}

	return donations, nil
}
