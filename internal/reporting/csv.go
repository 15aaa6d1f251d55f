// Package reporting renders the computed series as CSV files, one directory
// per event slug.
package reporting

import (
	"fmt"
	"strings"

	"election-market-lab/internal/domain"
)

// RenderOddsCSV renders one market's odds series as a CSV string.
func RenderOddsCSV(points []*domain.OddsPoint) string {
	var sb strings.Builder

	sb.WriteString("market_id,day_offset,segment,agg_yes,agg_no,odds\n")

	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%.6f,%.6f,%s\n",
			p.MarketID,
			p.DayOffset,
			p.Segment,
			p.AggYes,
			p.AggNo,
			formatNullable(p.Odds),
		))
	}

	return sb.String()
}

// RenderPeriodCSV renders one donation ratio series as a CSV string.
func RenderPeriodCSV(points []*domain.PeriodPoint) string {
	var sb strings.Builder

	sb.WriteString("event_slug,granularity,variant,period_key,segment,")
	sb.WriteString("period_dem,period_rep,cum_dem,cum_rep,dem_ratio\n")

	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%.2f,%.2f,%.2f,%.2f,%s\n",
			p.EventSlug,
			p.Granularity,
			p.Variant,
			p.PeriodKey,
			p.Segment,
			p.PeriodDem,
			p.PeriodRep,
			p.CumDem,
			p.CumRep,
			formatNullable(p.DemRatio),
		))
	}

	return sb.String()
}

// RenderAlignedCSV renders the aligned summary table. winningSideDem is
// stamped on every row; unresolved markets leave the column blank.
func RenderAlignedCSV(rows []*domain.AlignedRow, winningSideDem *bool) string {
	var sb strings.Builder

	sb.WriteString("period_key,donation_cumulative_ratio,donation_non_cumulative_ratio,")
	sb.WriteString("prediction_cumulative_odds,prediction_non_cumulative_price,winning_side_dem\n")

	winning := ""
	if winningSideDem != nil {
		winning = fmt.Sprintf("%t", *winningSideDem)
	}

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s\n",
			r.PeriodKey,
			formatNullable(r.DonationCumulativeRatio),
			formatNullable(r.DonationNonCumulativeRatio),
			formatNullable(r.PredictionCumulativeOdds),
			formatNullable(r.PredictionNonCumulativePrice),
			winning,
		))
	}

	return sb.String()
}

// formatNullable renders a nullable float, blank cell for nil.
func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
