package normalization

import (
	"election-market-lab/internal/domain"
)

// BuildDailyFlows groups trade events into per-(user, outcome, day) buy/sell
// totals. Output is in canonical order (user, outcome, day offset ascending),
// so results are identical regardless of input order.
func BuildDailyFlows(events []*domain.TradeEvent) []*domain.DailyFlow {
	if len(events) == 0 {
		return nil
	}

	type flowKey struct {
		userID    string
		outcome   domain.Outcome
		dayOffset int
	}

	flows := make(map[flowKey]*domain.DailyFlow)
	for _, e := range events {
		k := flowKey{e.UserID, e.Outcome, e.DayOffset}
		f, ok := flows[k]
		if !ok {
			f = &domain.DailyFlow{
				UserID:    e.UserID,
				Outcome:   e.Outcome,
				DayOffset: e.DayOffset,
			}
			flows[k] = f
		}
		switch e.Direction {
		case domain.DirectionBuy:
			f.BuyTotal += e.Quantity
		case domain.DirectionSell:
			f.SellTotal += e.Quantity
		}
		if e.UnixTime > f.LastEventTime {
			f.LastEventTime = e.UnixTime
		}
	}

	result := make([]*domain.DailyFlow, 0, len(flows))
	for _, f := range flows {
		result = append(result, f)
	}
	SortFlows(result)
	return result
}
