// Package normalization turns raw per-market trade rows into per-user daily
// flows and dense cumulative position series anchored to the market's closing
// date.
package normalization

import (
	"errors"
	"time"

	"election-market-lab/internal/domain"
)

// ErrNoTrades is returned when a market has no usable trade rows. Callers skip
// the market with a warning rather than aborting the batch.
var ErrNoTrades = errors.New("no usable trades in market")

// Timestamp layouts accepted in trades CSVs.
var tradeTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormalizeResult is the canonical per-user event stream for one market.
type NormalizeResult struct {
	Events      []*domain.TradeEvent
	ClosingDate time.Time // max calendar date over all trades, UTC midnight
	SkippedRows int       // rows dropped for unparseable timestamps or non-positive quantity
}

// NormalizeTrades converts raw trade rows into per-user events with day
// offsets. Each row contributes two events, one per counterparty, with the
// same quantity/value and independent directions. Rows with unparseable
// timestamps, unknown token sides, or non-positive quantity are counted in
// SkippedRows and dropped; the market fails only when nothing remains.
func NormalizeTrades(trades []*domain.RawTrade) (*NormalizeResult, error) {
	type parsedRow struct {
		trade   *domain.RawTrade
		at      time.Time
		date    time.Time
		outcome domain.Outcome
	}

	var rows []parsedRow
	skipped := 0
	for _, t := range trades {
		at, err := parseTradeTime(t.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		if t.TokenAmount <= 0 {
			skipped++
			continue
		}
		outcome, ok := outcomeFromSide(t.NonUSDCSide)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, parsedRow{
			trade:   t,
			at:      at,
			date:    dateOf(at),
			outcome: outcome,
		})
	}

	if len(rows) == 0 {
		return nil, ErrNoTrades
	}

	closing := rows[0].date
	for _, r := range rows[1:] {
		if r.date.After(closing) {
			closing = r.date
		}
	}

	events := make([]*domain.TradeEvent, 0, 2*len(rows))
	for _, r := range rows {
		offset := dayOffset(r.date, closing)
		events = append(events,
			&domain.TradeEvent{
				UserID:    r.trade.Maker,
				Outcome:   r.outcome,
				Direction: r.trade.MakerDirection,
				Quantity:  r.trade.TokenAmount,
				USDValue:  r.trade.USDAmount,
				UnixTime:  r.at.Unix(),
				DayOffset: offset,
			},
			&domain.TradeEvent{
				UserID:    r.trade.Taker,
				Outcome:   r.outcome,
				Direction: r.trade.TakerDirection,
				Quantity:  r.trade.TokenAmount,
				USDValue:  r.trade.USDAmount,
				UnixTime:  r.at.Unix(),
				DayOffset: offset,
			},
		)
	}

	return &NormalizeResult{
		Events:      events,
		ClosingDate: closing,
		SkippedRows: skipped,
	}, nil
}

func parseTradeTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range tradeTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func outcomeFromSide(side string) (domain.Outcome, bool) {
	switch side {
	case domain.TokenSideYes:
		return domain.OutcomeYes, true
	case domain.TokenSideNo:
		return domain.OutcomeNo, true
	default:
		return "", false
	}
}

// dateOf truncates a timestamp to its UTC calendar date. Intraday ordering is
// deliberately discarded: two trades on the same date land in the same bucket.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayOffset is floor(date) - floor(closing) in days; 0 on the closing day.
func dayOffset(date, closing time.Time) int {
	return int(date.Sub(closing).Hours() / 24)
}
