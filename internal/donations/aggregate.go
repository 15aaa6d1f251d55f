package donations

import (
	"sort"

	"election-market-lab/internal/domain"
)

// Cumulative buckets donations by period, sorts periods ascending, and folds
// running per-party totals. dem_ratio = cum_dem / (cum_dem + cum_rep), nil
// when the denominator is zero. Cumulative totals are non-decreasing in period
// order; the ratio carries no such guarantee.
//
// Input is assumed already passed through Filter. Segment is stamped
// SegmentAll; identity fields (event, granularity) are left for the caller.
func Cumulative(donations []*domain.Donation, g domain.Granularity) []*domain.PeriodPoint {
	return aggregate(donations, g, domain.VariantCumulative, domain.SegmentAll)
}

// NonCumulative is the period-local variant: the ratio uses only that period's
// totals, with no running sum.
func NonCumulative(donations []*domain.Donation, g domain.Granularity) []*domain.PeriodPoint {
	return aggregate(donations, g, domain.VariantNonCumulative, domain.SegmentAll)
}

// BySegment applies one variant to the full population ("all") and then to
// each donor tier subset. A nil lookup yields the all-segment series only.
func BySegment(donations []*domain.Donation, g domain.Granularity, v domain.Variant, lookup func(donor string) domain.Segment) []*domain.PeriodPoint {
	result := aggregate(donations, g, v, domain.SegmentAll)
	if lookup == nil {
		return result
	}
	for _, tier := range domain.TierSegments {
		var subset []*domain.Donation
		for _, d := range donations {
			if lookup(d.Donor) == tier {
				subset = append(subset, d)
			}
		}
		result = append(result, aggregate(subset, g, v, tier)...)
	}
	return result
}

func aggregate(donations []*domain.Donation, g domain.Granularity, v domain.Variant, seg domain.Segment) []*domain.PeriodPoint {
	if len(donations) == 0 {
		return nil
	}

	type partyTotals struct {
		dem float64
		rep float64
	}
	byPeriod := make(map[string]*partyTotals)
	for _, d := range donations {
		key := PeriodKey(d.Date, g)
		t, ok := byPeriod[key]
		if !ok {
			t = &partyTotals{}
			byPeriod[key] = t
		}
		switch d.Party {
		case domain.PartyDem:
			t.dem += d.AmountUSD
		case domain.PartyRep:
			t.rep += d.AmountUSD
		}
	}

	keys := make([]string, 0, len(byPeriod))
	for k := range byPeriod {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]*domain.PeriodPoint, 0, len(keys))
	var cumDem, cumRep float64
	for _, key := range keys {
		t := byPeriod[key]
		cumDem += t.dem
		cumRep += t.rep

		p := &domain.PeriodPoint{
			Granularity: g,
			Variant:     v,
			PeriodKey:   key,
			Segment:     seg,
			PeriodDem:   t.dem,
			PeriodRep:   t.rep,
		}

		var num, denom float64
		if v == domain.VariantCumulative {
			p.CumDem = cumDem
			p.CumRep = cumRep
			num, denom = cumDem, cumDem+cumRep
		} else {
			num, denom = t.dem, t.dem+t.rep
		}
		if denom > 0 {
			ratio := num / denom
			p.DemRatio = &ratio
		}
		result = append(result, p)
	}

	return result
}
