package normalization

import (
	"sort"

	"election-market-lab/internal/domain"
)

// AccumulatePositions folds daily flows into dense cumulative position series.
// For each user, positions cover every day offset from the user's first
// observed flow through the market's last day (offset 0). Days without a flow
// carry the previous value forward: a holding persists until traded against.
// A holding stays nil until that (user, outcome) pair's first flow.
//
// Flows need not be pre-sorted. Output is in (user_id, day_offset) order.
func AccumulatePositions(flows []*domain.DailyFlow) []*domain.PositionPoint {
	if len(flows) == 0 {
		return nil
	}

	// Partition net flows per user: day_offset -> net, per outcome.
	type userFlows struct {
		yes map[int]float64
		no  map[int]float64
	}
	byUser := make(map[string]*userFlows)
	for _, f := range flows {
		u, ok := byUser[f.UserID]
		if !ok {
			u = &userFlows{yes: make(map[int]float64), no: make(map[int]float64)}
			byUser[f.UserID] = u
		}
		switch f.Outcome {
		case domain.OutcomeYes:
			u.yes[f.DayOffset] += f.Net()
		case domain.OutcomeNo:
			u.no[f.DayOffset] += f.Net()
		}
	}

	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	var result []*domain.PositionPoint
	for _, id := range userIDs {
		u := byUser[id]
		start, ok := firstFlowDay(u.yes, u.no)
		if !ok {
			continue
		}

		yesStart, hasYes := firstDay(u.yes)
		noStart, hasNo := firstDay(u.no)

		var yesCum, noCum float64
		for day := start; day <= 0; day++ {
			p := &domain.PositionPoint{UserID: id, DayOffset: day}
			if hasYes && day >= yesStart {
				yesCum += u.yes[day]
				v := yesCum
				p.YesHolding = &v
			}
			if hasNo && day >= noStart {
				noCum += u.no[day]
				v := noCum
				p.NoHolding = &v
			}
			result = append(result, p)
		}
	}

	return result
}

func firstDay(flows map[int]float64) (int, bool) {
	first := 0
	found := false
	for day := range flows {
		if !found || day < first {
			first = day
			found = true
		}
	}
	return first, found
}

func firstFlowDay(yes, no map[int]float64) (int, bool) {
	y, hasY := firstDay(yes)
	n, hasN := firstDay(no)
	switch {
	case hasY && hasN:
		if y < n {
			return y, true
		}
		return n, true
	case hasY:
		return y, true
	case hasN:
		return n, true
	default:
		return 0, false
	}
}
