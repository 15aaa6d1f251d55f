package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/idhash"
)

// TradeReadResult carries the parsed rows plus skip accounting for logs.
type TradeReadResult struct {
	Trades      []*domain.RawTrade
	SkippedRows int
}

// ReadTrades parses a per-market trades CSV. Expected columns: timestamp,
// maker, taker, nonusdc_side, maker_direction, taker_direction, token_amount,
// usd_amount. Rows with an unparseable amount or an unknown direction are
// skipped and counted; the timestamp is carried raw because the normalizer
// owns timestamp validation.
func ReadTrades(r io.Reader, marketID string) (*TradeReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("trades file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read trades header: %w", err)
	}
	h := parseHeader(first)

	var cols struct {
		timestamp, maker, taker, side, makerDir, takerDir, tokenAmount, usdAmount int
	}
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"timestamp", &cols.timestamp},
		{"maker", &cols.maker},
		{"taker", &cols.taker},
		{"nonusdc_side", &cols.side},
		{"maker_direction", &cols.makerDir},
		{"taker_direction", &cols.takerDir},
		{"token_amount", &cols.tokenAmount},
		{"usd_amount", &cols.usdAmount},
	} {
		if *c.dst, err = h.index(c.name); err != nil {
			return nil, fmt.Errorf("trades file: %w", err)
		}
	}

	result := &TradeReadResult{}
	rowIndex := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trades row: %w", err)
		}

		trade, ok := parseTradeRow(record, cols.timestamp, cols.maker, cols.taker, cols.side,
			cols.makerDir, cols.takerDir, cols.tokenAmount, cols.usdAmount)
		if !ok {
			result.SkippedRows++
			rowIndex++
			continue
		}
		trade.MarketID = marketID
		trade.TradeID = idhash.ComputeTradeID(marketID, trade.Timestamp, trade.Maker, trade.Taker, rowIndex)
		result.Trades = append(result.Trades, trade)
		rowIndex++
	}

	return result, nil
}

func parseTradeRow(record []string, ts, maker, taker, side, makerDir, takerDir, tokenAmount, usdAmount int) (*domain.RawTrade, bool) {
	qty, err := strconv.ParseFloat(field(record, tokenAmount), 64)
	if err != nil {
		return nil, false
	}
	usd, err := strconv.ParseFloat(field(record, usdAmount), 64)
	if err != nil {
		return nil, false
	}

	md, ok := parseDirection(field(record, makerDir))
	if !ok {
		return nil, false
	}
	td, ok := parseDirection(field(record, takerDir))
	if !ok {
		return nil, false
	}

	return &domain.RawTrade{
		Timestamp:      field(record, ts),
		Maker:          field(record, maker),
		Taker:          field(record, taker),
		NonUSDCSide:    field(record, side),
		MakerDirection: md,
		TakerDirection: td,
		TokenAmount:    qty,
		USDAmount:      usd,
	}, true
}

func parseDirection(s string) (domain.Direction, bool) {
	switch domain.Direction(s) {
	case domain.DirectionBuy:
		return domain.DirectionBuy, true
	case domain.DirectionSell:
		return domain.DirectionSell, true
	}
	return "", false
}
