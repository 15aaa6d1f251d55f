package donations

import (
	"math"
	"testing"
	"time"

	"election-market-lab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 10, d, 0, 0, 0, 0, time.UTC)
}

func don(party domain.Party, date time.Time, amount float64) *domain.Donation {
	return &domain.Donation{Donor: "x", Party: party, Date: date, AmountUSD: amount}
}

func TestCumulative_RunningTotalsAndRatios(t *testing.T) {
	// DEM daily [100, 200, 50, 0] and REP daily [50, 150, 100, 75]:
	// cumulative DEM [100, 300, 350, 350], REP [50, 200, 300, 375],
	// dem_ratio [0.667, 0.600, 0.538, 0.483].
	var donations []*domain.Donation
	demDaily := []float64{100, 200, 50, 0}
	repDaily := []float64{50, 150, 100, 75}
	for i := 0; i < 4; i++ {
		if demDaily[i] > 0 {
			donations = append(donations, don(domain.PartyDem, day(i+1), demDaily[i]))
		}
		if repDaily[i] > 0 {
			donations = append(donations, don(domain.PartyRep, day(i+1), repDaily[i]))
		}
	}

	points := Cumulative(donations, domain.GranularityDaily)

	if len(points) != 4 {
		t.Fatalf("Expected 4 periods, got %d", len(points))
	}

	wantCumDem := []float64{100, 300, 350, 350}
	wantCumRep := []float64{50, 200, 300, 375}
	wantRatio := []float64{0.667, 0.600, 0.538, 0.483}
	for i, p := range points {
		if p.CumDem != wantCumDem[i] {
			t.Errorf("Period %d: expected cum_dem %v, got %v", i, wantCumDem[i], p.CumDem)
		}
		if p.CumRep != wantCumRep[i] {
			t.Errorf("Period %d: expected cum_rep %v, got %v", i, wantCumRep[i], p.CumRep)
		}
		if p.DemRatio == nil {
			t.Fatalf("Period %d: expected defined ratio", i)
		}
		if math.Abs(*p.DemRatio-wantRatio[i]) > 1e-3 {
			t.Errorf("Period %d: expected ratio %v, got %v", i, wantRatio[i], *p.DemRatio)
		}
	}
}

func TestCumulative_Monotonic(t *testing.T) {
	donations := []*domain.Donation{
		don(domain.PartyDem, day(1), 500),
		don(domain.PartyRep, day(2), 1),
		don(domain.PartyDem, day(3), 2),
		don(domain.PartyRep, day(5), 300),
	}

	points := Cumulative(donations, domain.GranularityDaily)

	for i := 1; i < len(points); i++ {
		if points[i].CumDem < points[i-1].CumDem || points[i].CumRep < points[i-1].CumRep {
			t.Errorf("Cumulative totals decreased at period %d", i)
		}
	}
}

func TestNonCumulative_PeriodLocalRatio(t *testing.T) {
	donations := []*domain.Donation{
		don(domain.PartyDem, day(1), 900),
		don(domain.PartyRep, day(1), 100),
		don(domain.PartyDem, day(2), 10),
		don(domain.PartyRep, day(2), 30),
	}

	points := NonCumulative(donations, domain.GranularityDaily)

	if len(points) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(points))
	}
	if *points[0].DemRatio != 0.9 {
		t.Errorf("Day 1: expected 0.9, got %v", *points[0].DemRatio)
	}
	// Period-local: the big day-1 lead must not leak into day 2.
	if *points[1].DemRatio != 0.25 {
		t.Errorf("Day 2: expected 0.25, got %v", *points[1].DemRatio)
	}
	if points[1].CumDem != 0 || points[1].CumRep != 0 {
		t.Errorf("Non-cumulative points must not carry running totals")
	}
}

func TestPeriodKey_Granularities(t *testing.T) {
	at := time.Date(2024, 11, 5, 13, 30, 0, 0, time.UTC)
	if got := PeriodKey(at, domain.GranularityDaily); got != "2024-11-05" {
		t.Errorf("daily: got %s", got)
	}
	if got := PeriodKey(at, domain.GranularityWeekly); got != "2024-W45" {
		t.Errorf("weekly: got %s", got)
	}
	if got := PeriodKey(at, domain.GranularityMonthly); got != "2024-11" {
		t.Errorf("monthly: got %s", got)
	}
}

func TestPeriodKey_ISOYearBoundary(t *testing.T) {
	// 2024-12-30 falls in ISO week 1 of 2025.
	at := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	if got := PeriodKey(at, domain.GranularityWeekly); got != "2025-W01" {
		t.Errorf("Expected 2025-W01, got %s", got)
	}
}

func TestFilter_PartyAndWindow(t *testing.T) {
	start := day(2)
	end := day(4)
	donations := []*domain.Donation{
		don(domain.PartyDem, day(1), 10),         // before window
		don(domain.PartyDem, day(2), 10),         // kept (inclusive start)
		don("GRN", day(3), 10),                   // other party, excluded entirely
		don(domain.PartyRep, day(3), -5),         // non-positive
		don(domain.PartyRep, day(4), 10),         // kept (inclusive end)
		don(domain.PartyDem, day(5), 10),         // after window
	}

	kept := Filter(donations, Window{Start: &start, End: &end})

	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept donations, got %d", len(kept))
	}
}

func TestFilter_OpenBounds(t *testing.T) {
	donations := []*domain.Donation{
		don(domain.PartyDem, day(1), 10),
		don(domain.PartyRep, day(28), 10),
	}
	if kept := Filter(donations, Window{}); len(kept) != 2 {
		t.Errorf("No reference prices means no date bound; got %d kept", len(kept))
	}
}

func TestBySegment_TierSubsets(t *testing.T) {
	donations := []*domain.Donation{
		{Donor: "big", Party: domain.PartyDem, Date: day(1), AmountUSD: 1000},
		{Donor: "tiny", Party: domain.PartyRep, Date: day(1), AmountUSD: 10},
	}
	lookup := func(donor string) domain.Segment {
		if donor == "big" {
			return domain.SegmentLarge
		}
		return domain.SegmentSmall
	}

	points := BySegment(donations, domain.GranularityDaily, domain.VariantNonCumulative, lookup)

	bySeg := make(map[domain.Segment]*domain.PeriodPoint)
	for _, p := range points {
		bySeg[p.Segment] = p
	}
	if *bySeg[domain.SegmentAll].DemRatio-1000.0/1010.0 > 1e-9 {
		t.Errorf("All segment ratio wrong: %v", *bySeg[domain.SegmentAll].DemRatio)
	}
	if *bySeg[domain.SegmentLarge].DemRatio != 1 {
		t.Errorf("Large segment should be all-DEM, got %v", *bySeg[domain.SegmentLarge].DemRatio)
	}
	if *bySeg[domain.SegmentSmall].DemRatio != 0 {
		t.Errorf("Small segment should be all-REP, got %v", *bySeg[domain.SegmentSmall].DemRatio)
	}
	if _, ok := bySeg[domain.SegmentMedium]; ok {
		t.Errorf("Empty medium tier must produce no rows")
	}
}
