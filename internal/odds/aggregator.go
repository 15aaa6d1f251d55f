// Package odds computes investment-weighted odds series from cumulative
// position series, by day offset and trader segment.
package odds

import (
	"sort"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/segments"
)

// Aggregate sums directional exposures per (day_offset, segment) and computes
// odds = agg_yes / (agg_yes + agg_no). A user's yes exposure counts only when
// their yes-side holding is non-zero that day, and likewise for the no side.
// The "all" segment covers every user; tier segments are strict subsets and
// are emitted only when the assignment has classified users.
//
// Odds is nil when both aggregates are zero: undefined, not 0. Users are
// accumulated in sorted order so identical input yields identical output.
func Aggregate(marketID string, positions []*domain.PositionPoint, assign *segments.Assignment) []*domain.OddsPoint {
	if len(positions) == 0 {
		return nil
	}

	byDay := make(map[int][]*domain.PositionPoint)
	for _, p := range positions {
		byDay[p.DayOffset] = append(byDay[p.DayOffset], p)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	segmentList := []domain.Segment{domain.SegmentAll}
	if assign != nil && len(assign.Segments) > 0 {
		segmentList = append(segmentList, domain.TierSegments...)
	}

	var result []*domain.OddsPoint
	for _, day := range days {
		points := byDay[day]
		sort.Slice(points, func(i, j int) bool {
			return points[i].UserID < points[j].UserID
		})

		for _, seg := range segmentList {
			var aggYes, aggNo float64
			for _, p := range points {
				if seg != domain.SegmentAll && assign.Lookup(p.UserID) != seg {
					continue
				}
				e := domain.ResolveExposure(p.YesHolding, p.NoHolding)
				if p.YesHolding != nil && *p.YesHolding != 0 {
					aggYes += e.Yes
				}
				if p.NoHolding != nil && *p.NoHolding != 0 {
					aggNo += e.No
				}
			}

			point := &domain.OddsPoint{
				MarketID:  marketID,
				DayOffset: day,
				Segment:   seg,
				AggYes:    aggYes,
				AggNo:     aggNo,
			}
			if total := aggYes + aggNo; total > 0 {
				odds := aggYes / total
				point.Odds = &odds
			}
			result = append(result, point)
		}
	}

	// Canonical (day_offset, segment) order for storage and CSV output.
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOffset != result[j].DayOffset {
			return result[i].DayOffset < result[j].DayOffset
		}
		return result[i].Segment < result[j].Segment
	})

	return result
}
