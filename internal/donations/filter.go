package donations

import (
	"time"

	"election-market-lab/internal/domain"
)

// Window bounds donation dates to the market's reference-price range. A nil
// bound leaves that side unfiltered (no reference-price data means no lower
// bound).
type Window struct {
	Start *time.Time // earliest reference-price date
	End   *time.Time // market close
}

// Filter keeps DEM/REP donations with positive amounts inside the window.
// Records for other parties are excluded entirely: they count in no
// denominator.
func Filter(donations []*domain.Donation, w Window) []*domain.Donation {
	var kept []*domain.Donation
	for _, d := range donations {
		if d.Party != domain.PartyDem && d.Party != domain.PartyRep {
			continue
		}
		if d.AmountUSD <= 0 {
			continue
		}
		if w.Start != nil && d.Date.Before(*w.Start) {
			continue
		}
		if w.End != nil && d.Date.After(*w.End) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
