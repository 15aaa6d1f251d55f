package domain

// Outcome identifies which side of a binary market a token pays out on.
type Outcome string

// Outcome constants
const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Direction is one counterparty's side of an executed trade.
type Direction string

// Direction constants
const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Token-side labels used in the trades CSV. token1 pays out on YES, token2 on NO.
const (
	TokenSideYes = "token1"
	TokenSideNo  = "token2"
)

// RawTrade is one row of a per-market trades CSV. A single exchange between two
// parties is a single row; maker and taker carry independent directions over the
// same quantity and USD value.
type RawTrade struct {
	TradeID        string // deterministic hash, set at ingestion
	MarketID       string
	Timestamp      string // raw timestamp text; parsed (and skipped on failure) by the normalizer
	Maker          string
	Taker          string
	NonUSDCSide    string // TokenSideYes or TokenSideNo
	MakerDirection Direction
	TakerDirection Direction
	TokenAmount    float64
	USDAmount      float64
}

// TradeEvent is a single user's side of an executed trade, anchored to the
// market's closing date. One RawTrade yields two TradeEvents.
type TradeEvent struct {
	UserID    string
	Outcome   Outcome
	Direction Direction
	Quantity  float64
	USDValue  float64
	UnixTime  int64
	DayOffset int // days relative to closing date, 0 = closing day
}

// UserVolume is one row of the optional precomputed lifetime-volume table.
type UserVolume struct {
	UserID      string
	LifetimeUSD float64
}
