package domain

import "time"

// Party is the recipient party code of a donation. Records outside DEM/REP are
// excluded from every aggregation, numerator and denominator alike.
type Party string

// Party constants
const (
	PartyDem Party = "DEM"
	PartyRep Party = "REP"
)

// Donation is one parsed row of the donation CSV, already filtered to the
// candidates of one event.
type Donation struct {
	EventSlug string
	Donor     string
	Party     Party
	Candidate string // "LAST, FIRST" as in the source CSV
	Date      time.Time
	AmountUSD float64
}
