package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"election-market-lab/internal/domain"
)

func TestGenerator_WriteOdds(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	points := []*domain.OddsPoint{
		{MarketID: "m1", DayOffset: 0, Segment: domain.SegmentAll, AggYes: 10, AggNo: 5, Odds: fptr(10.0 / 15.0)},
	}

	if err := g.WriteOdds("pres-2024", "m1", points); err != nil {
		t.Fatalf("WriteOdds failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pres-2024", "odds_m1.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "market_id,day_offset,segment") {
		t.Errorf("unexpected content:\n%s", data)
	}
}

func TestGenerator_WritePeriodSeriesAndAligned(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	points := []*domain.PeriodPoint{
		{
			EventSlug:   "pres-2024",
			Granularity: domain.GranularityWeekly,
			Variant:     domain.VariantNonCumulative,
			PeriodKey:   "2024-W40",
			Segment:     domain.SegmentAll,
			PeriodDem:   100,
			PeriodRep:   50,
			DemRatio:    fptr(100.0 / 150.0),
		},
	}
	if err := g.WritePeriodSeries("pres-2024", domain.GranularityWeekly, domain.VariantNonCumulative, points); err != nil {
		t.Fatalf("WritePeriodSeries failed: %v", err)
	}

	rows := []*domain.AlignedRow{{PeriodKey: "2024-W40", DonationCumulativeRatio: fptr(0.5)}}
	if err := g.WriteAligned("pres-2024", domain.GranularityWeekly, rows, nil); err != nil {
		t.Fatalf("WriteAligned failed: %v", err)
	}

	for _, name := range []string{"donations_weekly_non_cumulative.csv", "aligned_weekly.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "pres-2024", name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}
