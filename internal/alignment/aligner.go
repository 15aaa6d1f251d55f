// Package alignment reindexes the four signal series onto the canonical period
// axis defined by the donation-cumulative series, with component-specific fill
// policy: gaps stay null for the non-cumulative series, while the odds series
// is forward-filled because positions persist until traded against.
package alignment

import (
	"sort"
	"time"

	"election-market-lab/internal/donations"
	"election-market-lab/internal/domain"
)

// Inputs collects the four independently-produced series for one event and
// frequency. Odds points are keyed by day offset and mapped to calendar dates
// via ClosingDate; price points are keyed by unix timestamp.
type Inputs struct {
	DonationCumulative    []*domain.PeriodPoint
	DonationNonCumulative []*domain.PeriodPoint
	Odds                  []*domain.OddsPoint
	Prices                []*domain.PricePoint
	ClosingDate           time.Time
	Granularity           domain.Granularity
	DemocratName          string
}

// Align builds one row per canonical period. The canonical axis is the sorted,
// deduplicated set of period keys in the donation-cumulative "all" series.
// Deterministic: identical inputs yield an identical table.
func Align(in Inputs) []*domain.AlignedRow {
	axis := canonicalAxis(in.DonationCumulative)
	if len(axis) == 0 {
		return nil
	}

	donCum := ratioByPeriod(in.DonationCumulative)
	donNonCum := ratioByPeriod(in.DonationNonCumulative)
	oddsByPeriod := lastOddsPerPeriod(in.Odds, in.ClosingDate, in.Granularity)
	priceByPeriod := lastPricePerPeriod(in.Prices, in.Granularity, in.DemocratName)

	rows := make([]*domain.AlignedRow, 0, len(axis))
	var carried *float64 // forward-fill state for the odds column
	for _, period := range axis {
		if v, ok := oddsByPeriod[period]; ok {
			carried = v
		}

		row := &domain.AlignedRow{
			PeriodKey:                    period,
			DonationCumulativeRatio:      donCum[period],
			DonationNonCumulativeRatio:   donNonCum[period],
			PredictionCumulativeOdds:     copyFloat(carried),
			PredictionNonCumulativePrice: priceByPeriod[period],
		}
		rows = append(rows, row)
	}

	return rows
}

func canonicalAxis(points []*domain.PeriodPoint) []string {
	seen := make(map[string]struct{})
	var axis []string
	for _, p := range points {
		if p.Segment != domain.SegmentAll {
			continue
		}
		if _, ok := seen[p.PeriodKey]; ok {
			continue
		}
		seen[p.PeriodKey] = struct{}{}
		axis = append(axis, p.PeriodKey)
	}
	sort.Strings(axis)
	return axis
}

func ratioByPeriod(points []*domain.PeriodPoint) map[string]*float64 {
	m := make(map[string]*float64)
	for _, p := range points {
		if p.Segment != domain.SegmentAll {
			continue
		}
		m[p.PeriodKey] = copyFloat(p.DemRatio)
	}
	return m
}

// lastOddsPerPeriod maps all-segment odds points onto calendar periods and
// keeps the value at the highest day offset within each period.
func lastOddsPerPeriod(points []*domain.OddsPoint, closing time.Time, g domain.Granularity) map[string]*float64 {
	lastOffset := make(map[string]int)
	m := make(map[string]*float64)
	for _, p := range points {
		if p.Segment != domain.SegmentAll {
			continue
		}
		date := closing.AddDate(0, 0, p.DayOffset)
		period := donations.PeriodKey(date, g)
		if prev, ok := lastOffset[period]; ok && prev >= p.DayOffset {
			continue
		}
		lastOffset[period] = p.DayOffset
		m[period] = copyFloat(p.Odds)
	}
	return m
}

// lastPricePerPeriod selects the Democrat column and keeps the last observed
// price within each period. Returns an empty map when no column qualifies.
func lastPricePerPeriod(points []*domain.PricePoint, g domain.Granularity, democratName string) map[string]*float64 {
	if len(points) == 0 {
		return map[string]*float64{}
	}

	labelSeen := make(map[string]struct{})
	var labels []string
	for _, p := range points {
		if _, ok := labelSeen[p.OutcomeLabel]; !ok {
			labelSeen[p.OutcomeLabel] = struct{}{}
			labels = append(labels, p.OutcomeLabel)
		}
	}
	sort.Strings(labels)

	column, _, ok := SelectDemocratColumn(labels, democratName)
	if !ok {
		return map[string]*float64{}
	}

	lastTs := make(map[string]int64)
	m := make(map[string]*float64)
	for _, p := range points {
		if p.OutcomeLabel != column {
			continue
		}
		period := donations.PeriodKey(time.Unix(p.Timestamp, 0).UTC(), g)
		if prev, ok := lastTs[period]; ok && prev >= p.Timestamp {
			continue
		}
		lastTs[period] = p.Timestamp
		v := p.Price
		m[period] = &v
	}
	return m
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
