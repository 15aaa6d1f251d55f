// Package donations aggregates donation records into per-period party totals
// and Dem/(Dem+Rep) ratio series, cumulative and period-local, optionally per
// donor segment.
package donations

import (
	"fmt"
	"time"

	"election-market-lab/internal/domain"
)

// PeriodKey buckets a date into a calendar period. Keys sort lexically in
// chronological order for every granularity:
//
//	daily   2024-11-05
//	weekly  2024-W45 (ISO year and week)
//	monthly 2024-11
func PeriodKey(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.GranularityWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
