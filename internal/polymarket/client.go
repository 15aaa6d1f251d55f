// Package polymarket fetches event metadata from the Gamma API and per-token
// price histories from the CLOB API. It is a thin boundary: its output is
// written to the same metadata and price files the pipeline reads back, so
// the core never touches the network.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultGammaBase      = "https://gamma-api.polymarket.com"
	DefaultClobBase       = "https://clob.polymarket.com"
	DefaultTimeout        = 30 * time.Second
	DefaultRateLimitSleep = 500 * time.Millisecond

	// CLOB price-history parameters; startTs comes from the market's startDate.
	historyInterval = "max"
	historyFidelity = 60
)

// Client talks to the Gamma and CLOB APIs.
type Client struct {
	gammaBase      string
	clobBase       string
	client         *http.Client
	rateLimitSleep time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithGammaBase overrides the Gamma API base URL.
func WithGammaBase(base string) ClientOption {
	return func(c *Client) {
		c.gammaBase = strings.TrimRight(base, "/")
	}
}

// WithClobBase overrides the CLOB API base URL.
func WithClobBase(base string) ClientOption {
	return func(c *Client) {
		c.clobBase = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithRateLimitSleep sets the pause between price-history calls.
func WithRateLimitSleep(d time.Duration) ClientOption {
	return func(c *Client) {
		c.rateLimitSleep = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Polymarket API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		gammaBase:      DefaultGammaBase,
		clobBase:       DefaultClobBase,
		client:         &http.Client{Timeout: DefaultTimeout},
		rateLimitSleep: DefaultRateLimitSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEventBySlug retrieves event metadata from the Gamma API.
func (c *Client) FetchEventBySlug(ctx context.Context, slug string) (*Event, error) {
	u := fmt.Sprintf("%s/events/slug/%s", c.gammaBase, url.PathEscape(slug))

	var event Event
	if err := c.getJSON(ctx, u, &event); err != nil {
		return nil, fmt.Errorf("fetch event %q: %w", slug, err)
	}
	return &event, nil
}

// priceHistoryResponse is the raw CLOB response. Points arrive either as
// {t, p} objects or [t, p] arrays depending on API version.
type priceHistoryResponse struct {
	History []json.RawMessage `json:"history"`
}

// FetchPriceHistory retrieves one token's price history. Prices above 1 are
// basis points and get scaled back to 0-1.
func (c *Client) FetchPriceHistory(ctx context.Context, tokenID string, startTs *int64) ([]HistoryPoint, error) {
	q := url.Values{}
	q.Set("market", tokenID)
	q.Set("interval", historyInterval)
	q.Set("fidelity", strconv.Itoa(historyFidelity))
	if startTs != nil {
		q.Set("startTs", strconv.FormatInt(*startTs, 10))
	}
	u := fmt.Sprintf("%s/prices-history?%s", c.clobBase, q.Encode())

	var resp priceHistoryResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetch price history for token %s: %w", truncate(tokenID, 20), err)
	}

	var points []HistoryPoint
	for _, raw := range resp.History {
		if p, ok := normalizeHistoryPoint(raw); ok {
			points = append(points, p)
		}
	}
	return points, nil
}

// FetchAllPriceHistories fetches the history of every YES-side token in the
// event, sleeping between calls to stay under the CLOB rate limit. "No"
// tokens are skipped: a binary market's No series is redundant.
func (c *Client) FetchAllPriceHistories(ctx context.Context, event *Event) ([]*TokenSeries, error) {
	var all []*TokenSeries
	first := true
	for _, mt := range EventMarketTokens(event) {
		for i, tokenID := range mt.TokenIDs {
			if i >= len(mt.OutcomeLabels) || mt.OutcomeLabels[i] == "No" {
				continue
			}
			if !first {
				select {
				case <-ctx.Done():
					return all, ctx.Err()
				case <-time.After(c.rateLimitSleep):
				}
			}
			first = false

			history, err := c.FetchPriceHistory(ctx, tokenID, mt.StartTs)
			if err != nil {
				return all, err
			}
			all = append(all, &TokenSeries{
				OutcomeLabel: mt.OutcomeLabels[i],
				TokenID:      tokenID,
				History:      history,
			})
		}
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// EventMarketTokens extracts per-market token ids, outcome labels, and the
// CLOB start timestamp from startDate (createdAt as fallback).
func EventMarketTokens(event *Event) []MarketTokens {
	var result []MarketTokens
	for i := range event.Markets {
		m := &event.Markets[i]
		tokenIDs := m.TokenIDs()
		if len(tokenIDs) == 0 {
			continue
		}

		startISO := m.StartDate
		if startISO == "" {
			startISO = m.CreatedAt
		}
		startTs := ISOToUnix(startISO)

		outcomes := m.OutcomeLabels()
		group := strings.TrimSpace(m.GroupItemTitle)

		var labels []string
		switch {
		case group != "" && len(tokenIDs) == 2:
			labels = []string{group, "No"}
		case len(outcomes) >= len(tokenIDs):
			labels = outcomes[:len(tokenIDs)]
		case len(tokenIDs) == 2:
			question := strings.TrimSpace(m.Question)
			if question == "" {
				question = "Yes"
			}
			labels = []string{question, "No"}
		default:
			labels = make([]string, len(tokenIDs))
			for j := range labels {
				labels[j] = fmt.Sprintf("Outcome_%d", j)
			}
		}

		result = append(result, MarketTokens{
			Question:      m.Question,
			TokenIDs:      tokenIDs,
			OutcomeLabels: labels,
			StartTs:       startTs,
		})
	}
	return result
}

var isoFraction = regexp.MustCompile(`^(.*T\d{2}:\d{2}:\d{2})(?:\.(\d+))?(.*)$`)

// ISOToUnix parses an ISO8601 timestamp to unix seconds. Handles Z suffixes
// and fractional seconds of any width; returns nil when unparseable.
func ISOToUnix(iso string) *int64 {
	s := strings.TrimSpace(iso)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, "Z", "+00:00", 1)
	if m := isoFraction.FindStringSubmatch(s); m != nil && m[2] != "" {
		frac := m[2]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		s = m[1] + "." + frac + m[3]
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			ts := t.Unix()
			return &ts
		}
	}
	return nil
}

// normalizeHistoryPoint decodes a {t, p} object or [t, p] pair, scaling
// basis-point prices down to 0-1.
func normalizeHistoryPoint(raw json.RawMessage) (HistoryPoint, bool) {
	var obj struct {
		T *float64 `json:"t"`
		P *float64 `json:"p"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.T != nil && obj.P != nil {
		return scalePoint(*obj.T, *obj.P), true
	}

	var pair []float64
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) >= 2 {
		return scalePoint(pair[0], pair[1]), true
	}
	return HistoryPoint{}, false
}

func scalePoint(t, p float64) HistoryPoint {
	if p > 1 {
		p = p / 10000.0
	}
	return HistoryPoint{Timestamp: int64(t), Price: p}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
