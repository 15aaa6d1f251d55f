package domain

// Granularity selects the calendar bucket used for period aggregation.
type Granularity string

// Supported granularities
const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Granularities lists all supported period granularities.
var Granularities = []Granularity{GranularityDaily, GranularityWeekly, GranularityMonthly}

// Variant distinguishes the cumulative and period-local donation series.
type Variant string

// Variant constants
const (
	VariantCumulative    Variant = "cumulative"
	VariantNonCumulative Variant = "non_cumulative"
)

// PeriodPoint is one period of a donation ratio series. PeriodDem/PeriodRep are
// the period-local party totals; CumDem/CumRep the running totals (zero for the
// non-cumulative variant). DemRatio is nil when its denominator is zero.
type PeriodPoint struct {
	EventSlug   string
	Granularity Granularity
	Variant     Variant
	PeriodKey   string
	Segment     Segment
	PeriodDem   float64
	PeriodRep   float64
	CumDem      float64
	CumRep      float64
	DemRatio    *float64
}
