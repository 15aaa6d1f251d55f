package domain

// DailyFlow aggregates one user's buys and sells of one outcome on one day.
// Keyed by (UserID, Outcome, DayOffset); immutable once derived for a market.
type DailyFlow struct {
	UserID        string
	Outcome       Outcome
	DayOffset     int
	BuyTotal      float64
	SellTotal     float64
	LastEventTime int64 // unix seconds of the latest trade in the bucket
}

// Net is the day's net token flow: buys minus sells.
func (f *DailyFlow) Net() float64 {
	return f.BuyTotal - f.SellTotal
}

// PositionPoint is a user's cumulative holdings of both outcomes at one day
// offset. A nil holding means the user has not yet traded that outcome; once a
// flow has occurred the holding is carried forward on every later day through
// day offset 0.
type PositionPoint struct {
	UserID     string
	DayOffset  int
	YesHolding *float64
	NoHolding  *float64
}
