package domain

// OddsPoint is the aggregated directional exposure of one segment on one day.
// Odds is nil when AggYes+AggNo == 0; an undefined ratio is never encoded as 0.
type OddsPoint struct {
	MarketID  string
	DayOffset int
	Segment   Segment
	AggYes    float64
	AggNo     float64
	Odds      *float64 // AggYes / (AggYes + AggNo)
}
