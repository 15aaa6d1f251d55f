package domain

// PricePoint is one observed market price, 0-1, for a labeled outcome.
type PricePoint struct {
	Timestamp    int64 // unix seconds
	OutcomeLabel string
	Price        float64
}
