package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// requestLog records requested token ids across handler goroutines.
type requestLog struct {
	mu   sync.Mutex
	seen []string
}

func (l *requestLog) add(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, v)
}

func (l *requestLog) values() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seen...)
}

func TestClient_FetchEventBySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/slug/pres-2024" {
			t.Errorf("expected path /events/slug/pres-2024, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"slug": "pres-2024",
			"title": "Presidential Election Winner 2024",
			"markets": [
				{
					"question": "Will a Democrat win?",
					"groupItemTitle": "",
					"outcomes": "[\"Democrat\", \"Republican\"]",
					"outcomePrices": "[\"0.02\", \"0.98\"]",
					"clobTokenIds": "[\"tok1\", \"tok2\"]",
					"startDate": "2024-01-04T22:58:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(WithGammaBase(server.URL))

	event, err := client.FetchEventBySlug(context.Background(), "pres-2024")
	if err != nil {
		t.Fatalf("FetchEventBySlug: %v", err)
	}

	if event.Slug != "pres-2024" {
		t.Errorf("expected slug pres-2024, got %s", event.Slug)
	}
	if len(event.Markets) != 1 {
		t.Fatalf("expected 1 market, got %d", len(event.Markets))
	}
	labels := event.Markets[0].OutcomeLabels()
	if len(labels) != 2 || labels[0] != "Democrat" {
		t.Errorf("outcome labels = %v", labels)
	}
	prices := event.Markets[0].Prices()
	if len(prices) != 2 || prices[1] != 0.98 {
		t.Errorf("outcome prices = %v", prices)
	}
}

func TestClient_FetchEventBySlug_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithGammaBase(server.URL))
	if _, err := client.FetchEventBySlug(context.Background(), "missing"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestClient_FetchPriceHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("market") != "tok1" {
			t.Errorf("expected market=tok1, got %s", q.Get("market"))
		}
		if q.Get("interval") != "max" || q.Get("fidelity") != "60" {
			t.Errorf("expected interval=max fidelity=60, got %s/%s", q.Get("interval"), q.Get("fidelity"))
		}
		if q.Get("startTs") != "1704409080" {
			t.Errorf("expected startTs=1704409080, got %s", q.Get("startTs"))
		}
		w.Header().Set("Content-Type", "application/json")
		// Mixed point encodings plus a basis-point price.
		w.Write([]byte(`{"history": [{"t": 1704409080, "p": 0.52}, [1704412680, 5300]]}`))
	}))
	defer server.Close()

	client := NewClient(WithClobBase(server.URL))
	startTs := int64(1704409080)

	points, err := client.FetchPriceHistory(context.Background(), "tok1", &startTs)
	if err != nil {
		t.Fatalf("FetchPriceHistory: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Timestamp != 1704409080 || points[0].Price != 0.52 {
		t.Errorf("first point = %+v", points[0])
	}
	if points[1].Price != 0.53 {
		t.Errorf("basis points not scaled: %+v", points[1])
	}
}

func TestClient_FetchAllPriceHistories_SkipsNoTokens(t *testing.T) {
	var requested requestLog
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested.add(r.URL.Query().Get("market"))
		w.Write([]byte(`{"history": [{"t": 1, "p": 0.5}]}`))
	}))
	defer server.Close()

	event := &Event{
		Markets: []Market{
			{
				Question:       "Will Kari Lake win?",
				GroupItemTitle: "Kari Lake",
				ClobTokenIDs:   `["yes-tok", "no-tok"]`,
			},
		},
	}

	client := NewClient(WithClobBase(server.URL), WithRateLimitSleep(time.Millisecond))

	series, err := client.FetchAllPriceHistories(context.Background(), event)
	if err != nil {
		t.Fatalf("FetchAllPriceHistories: %v", err)
	}

	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	if series[0].OutcomeLabel != "Kari Lake" || series[0].TokenID != "yes-tok" {
		t.Errorf("series = %+v", series[0])
	}
	if got := requested.values(); len(got) != 1 || got[0] != "yes-tok" {
		t.Errorf("expected only yes-tok requested, got %v", got)
	}
}

func TestISOToUnix(t *testing.T) {
	tests := []struct {
		iso  string
		want int64
	}{
		{"2024-01-04T22:58:00Z", 1704409080},
		{"2024-01-04T22:58:00.123Z", 1704409080},
		{"2024-01-04T22:58:00+00:00", 1704409080},
		{"2024-01-04T22:58:00", 1704409080}, // naive: assume UTC
	}
	for _, tt := range tests {
		got := ISOToUnix(tt.iso)
		if got == nil {
			t.Errorf("ISOToUnix(%q) = nil", tt.iso)
			continue
		}
		if *got != tt.want {
			t.Errorf("ISOToUnix(%q) = %d, want %d", tt.iso, *got, tt.want)
		}
	}

	if got := ISOToUnix(""); got != nil {
		t.Errorf("ISOToUnix(\"\") = %v, want nil", *got)
	}
	if got := ISOToUnix("not-a-date"); got != nil {
		t.Errorf("ISOToUnix garbage = %v, want nil", *got)
	}
}

func TestParseClobTokenIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["a", "b"]`, []string{"a", "b"}},
		{`a, b`, []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseClobTokenIDs(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("ParseClobTokenIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseClobTokenIDs(%q) = %v, want %v", tt.raw, got, tt.want)
				break
			}
		}
	}
}

func TestWinningSideDem(t *testing.T) {
	event := &Event{
		Markets: []Market{
			{
				Question:      "Presidential winner",
				Outcomes:      `["Democrat", "Republican"]`,
				OutcomePrices: `["0.02", "0.98"]`,
				ClobTokenIDs:  `["t1", "t2"]`,
			},
		},
	}

	got := WinningSideDem(event, "Kamala Harris")
	if got == nil {
		t.Fatal("expected a resolved side")
	}
	if *got {
		t.Error("Democrat price 0.02 should resolve as a loss")
	}

	empty := &Event{}
	if WinningSideDem(empty, "") != nil {
		t.Error("event without prices must stay unresolved")
	}
}
