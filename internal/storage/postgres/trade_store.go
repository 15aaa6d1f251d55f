package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate trade_id.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}

	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.MarketID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trades (
			trade_id, market_id, trade_timestamp, maker, taker, nonusdc_side,
			maker_direction, taker_direction, token_amount, usd_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, t := range trades {
		_, err := tx.Exec(ctx, query,
			t.TradeID,
			t.MarketID,
			t.Timestamp,
			t.Maker,
			t.Taker,
			t.NonUSDCSide,
			t.MakerDirection,
			t.TakerDirection,
			t.TokenAmount,
			t.USDAmount,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByMarketID retrieves all trades for a market, ordered by trade_id ASC.
func (s *TradeStore) GetByMarketID(ctx context.Context, marketID string) ([]*domain.RawTrade, error) {
	query := `
		SELECT trade_id, market_id, trade_timestamp, maker, taker, nonusdc_side,
		       maker_direction, taker_direction, token_amount, usd_amount
		FROM trades
		WHERE market_id = $1
		ORDER BY trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("get trades by market id: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListMarkets returns the distinct market IDs present, sorted ASC.
func (s *TradeStore) ListMarkets(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT market_id FROM trades ORDER BY market_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var markets []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan market id: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market rows: %w", err)
	}

	return markets, nil
}

// scanTrades scans multiple rows into a slice of RawTrade.
func scanTrades(rows pgx.Rows) ([]*domain.RawTrade, error) {
	var trades []*domain.RawTrade

	for rows.Next() {
		var t domain.RawTrade

		err := rows.Scan(
			&t.TradeID,
			&t.MarketID,
			&t.Timestamp,
			&t.Maker,
			&t.Taker,
			&t.NonUSDCSide,
			&t.MakerDirection,
			&t.TakerDirection,
			&t.TokenAmount,
			&t.USDAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
