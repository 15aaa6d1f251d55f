package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"election-market-lab/internal/domain"
)

// ReadPrices parses a reference price history CSV. Expected columns:
// timestamp (unix seconds), outcome_label, price. Rows with an unparseable
// timestamp or price are skipped.
func ReadPrices(r io.Reader) ([]*domain.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("prices file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read prices header: %w", err)
	}
	h := parseHeader(first)

	tsIdx, err := h.index("timestamp")
	if err != nil {
		return nil, fmt.Errorf("prices file: %w", err)
	}
	labelIdx, err := h.index("outcome_label")
	if err != nil {
		return nil, fmt.Errorf("prices file: %w", err)
	}
	priceIdx, err := h.index("price")
	if err != nil {
		return nil, fmt.Errorf("prices file: %w", err)
	}

	var points []*domain.PricePoint
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read prices row: %w", err)
		}

		ts, err := strconv.ParseInt(field(record, tsIdx), 10, 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(field(record, priceIdx), 64)
		if err != nil {
			continue
		}
		points = append(points, &domain.PricePoint{
			Timestamp:    ts,
			OutcomeLabel: field(record, labelIdx),
			Price:        price,
		})
	}

	return points, nil
}
