package normalization

import (
	"sort"

	"election-market-lab/internal/domain"
)

// SortFlows orders daily flows by (user_id ASC, outcome ASC, day_offset ASC).
// This is the canonical order for accumulation and reproducible summation.
func SortFlows(flows []*domain.DailyFlow) {
	sort.Slice(flows, func(i, j int) bool {
		return compareFlows(flows[i], flows[j]) < 0
	})
}

// SortPositions orders position points by (user_id ASC, day_offset ASC).
func SortPositions(points []*domain.PositionPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].UserID != points[j].UserID {
			return points[i].UserID < points[j].UserID
		}
		return points[i].DayOffset < points[j].DayOffset
	})
}

// compareFlows returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareFlows(a, b *domain.DailyFlow) int {
	if a.UserID != b.UserID {
		if a.UserID < b.UserID {
			return -1
		}
		return 1
	}
	if a.Outcome != b.Outcome {
		if a.Outcome < b.Outcome {
			return -1
		}
		return 1
	}
	if a.DayOffset != b.DayOffset {
		if a.DayOffset < b.DayOffset {
			return -1
		}
		return 1
	}
	return 0
}
