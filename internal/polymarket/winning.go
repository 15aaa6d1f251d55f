package polymarket

import (
	"sort"

	"election-market-lab/internal/alignment"
)

// WinningSideDem infers from resolved event metadata whether the Democrat
// side won, using the same column-selection chain the aligner applies to
// price files. Returns nil when the event carries no resolvable prices, so
// unresolved events surface as a blank column rather than a guess.
func WinningSideDem(event *Event, democratName string) *bool {
	if event == nil {
		return nil
	}

	priceByLabel := make(map[string]float64)
	for _, mt := range EventMarketTokens(event) {
		prices := marketPrices(event, mt.Question)
		for i, label := range mt.OutcomeLabels {
			if i >= len(prices) {
				break
			}
			priceByLabel[label] = prices[i]
		}
	}
	if len(priceByLabel) == 0 {
		return nil
	}

	labels := make([]string, 0, len(priceByLabel))
	for l := range priceByLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	column, _, ok := alignment.SelectDemocratColumn(labels, democratName)
	if !ok {
		return nil
	}

	won := priceByLabel[column] > 0.5
	return &won
}

func marketPrices(event *Event, question string) []float64 {
	for i := range event.Markets {
		if event.Markets[i].Question == question {
			return event.Markets[i].Prices()
		}
	}
	return nil
}
