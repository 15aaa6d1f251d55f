package segments

import (
	"sort"

	"election-market-lab/internal/domain"
)

// DonorAssignment maps donors to size tiers using percentile thresholds over
// lifetime donation totals, computed once per event over the full donor
// population. Small <= p33.3 < Medium <= p66.6 < Large.
type DonorAssignment struct {
	Segments map[string]domain.Segment
	P33      float64
	P66      float64
}

// Lookup returns the tier for a donor, or SegmentAll when unknown.
func (a *DonorAssignment) Lookup(donor string) domain.Segment {
	if a == nil || len(a.Segments) == 0 {
		return domain.SegmentAll
	}
	if s, ok := a.Segments[donor]; ok {
		return s
	}
	return domain.SegmentAll
}

// SegmentDonors classifies donors by lifetime donated amount. Donors whose
// total is not positive are left unclassified. Returns nil when no donor
// qualifies, which downstream treats as "All segment only".
func SegmentDonors(donations []*domain.Donation) *DonorAssignment {
	totals := make(map[string]float64)
	for _, d := range donations {
		if d.AmountUSD > 0 {
			totals[d.Donor] += d.AmountUSD
		}
	}
	if len(totals) == 0 {
		return nil
	}

	amounts := make([]float64, 0, len(totals))
	for _, v := range totals {
		amounts = append(amounts, v)
	}
	sort.Float64s(amounts)

	p33 := quantile(amounts, 0.333)
	p66 := quantile(amounts, 0.666)

	seg := make(map[string]domain.Segment, len(totals))
	for donor, total := range totals {
		switch {
		case total <= p33:
			seg[donor] = domain.SegmentSmall
		case total <= p66:
			seg[donor] = domain.SegmentMedium
		default:
			seg[donor] = domain.SegmentLarge
		}
	}

	return &DonorAssignment{Segments: seg, P33: p33, P66: p66}
}

// quantile computes the q-th quantile of a sorted slice with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
