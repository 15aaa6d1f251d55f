package polymarket

import (
	"encoding/json"
	"strings"
)

// Event is Gamma event metadata, trimmed to the fields the pipeline reads.
type Event struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market inside an event. Gamma encodes outcomes, outcomePrices,
// and clobTokenIds as JSON array strings inside the JSON document, so they are
// kept raw here and decoded by accessors.
type Market struct {
	Question       string `json:"question"`
	GroupItemTitle string `json:"groupItemTitle"`
	Outcomes       string `json:"outcomes"`
	OutcomePrices  string `json:"outcomePrices"`
	ClobTokenIDs   string `json:"clobTokenIds"`
	StartDate      string `json:"startDate"`
	CreatedAt      string `json:"createdAt"`
	EndDate        string `json:"endDate"`
}

// OutcomeLabels decodes the market's outcomes column.
func (m *Market) OutcomeLabels() []string {
	return parseJSONStringArray(m.Outcomes)
}

// Prices decodes outcomePrices; values arrive as strings ("0.985").
func (m *Market) Prices() []float64 {
	var prices []float64
	for _, s := range parseJSONStringArray(m.OutcomePrices) {
		var v float64
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil
		}
		prices = append(prices, v)
	}
	return prices
}

// TokenIDs decodes clobTokenIds.
func (m *Market) TokenIDs() []string {
	return ParseClobTokenIDs(m.ClobTokenIDs)
}

// ParseClobTokenIDs decodes Gamma's clobTokenIds value, normally a
// JSON-encoded array string, with a comma-split fallback for older records.
func ParseClobTokenIDs(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if ids := parseJSONStringArray(s); ids != nil {
		return ids
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `[]"`)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func parseJSONStringArray(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		// Some records double-encode numbers; retry as generic array.
		var anyArr []any
		if err := json.Unmarshal([]byte(s), &anyArr); err != nil {
			return nil
		}
		for _, v := range anyArr {
			switch t := v.(type) {
			case string:
				arr = append(arr, t)
			case float64:
				b, _ := json.Marshal(t)
				arr = append(arr, string(b))
			}
		}
		return arr
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// HistoryPoint is one observation of a token's price history, price in 0-1.
type HistoryPoint struct {
	Timestamp int64
	Price     float64
}

// TokenSeries is one token's full price history with the label the pipeline
// writes to the prices CSV.
type TokenSeries struct {
	OutcomeLabel string
	TokenID      string
	History      []HistoryPoint
}

// MarketTokens pairs a market's token ids with outcome labels and the start
// timestamp the CLOB API needs. Labels prefer groupItemTitle for binary
// markets ("Kari Lake" / "No"), then the outcomes column, then the question.
type MarketTokens struct {
	Question      string
	TokenIDs      []string
	OutcomeLabels []string
	StartTs       *int64
}
