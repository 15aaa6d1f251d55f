// Package segments assigns static size tiers: traders from lifetime traded USD
// volume, donors from lifetime donation percentiles.
package segments

import (
	"strings"

	"election-market-lab/internal/domain"
)

// Source tags which strategy produced a trader segment assignment, so callers
// can tell "used the precomputed table" from "derived from trades".
type Source string

// Assignment sources
const (
	SourceVolumeTable Source = "volume_table"
	SourceDerived     Source = "derived_from_trades"
)

// Assignment is a static user -> tier mapping for one analysis run. User IDs
// are lowercased; lookups must lowercase too (see Lookup).
type Assignment struct {
	Segments map[string]domain.Segment
	Source   Source
}

// Lookup returns the tier for a user, or SegmentAll when the user is unknown.
func (a *Assignment) Lookup(userID string) domain.Segment {
	if a == nil || len(a.Segments) == 0 {
		return domain.SegmentAll
	}
	if s, ok := a.Segments[strings.ToLower(userID)]; ok {
		return s
	}
	return domain.SegmentAll
}

// Resolve builds a trader segment assignment using an ordered fallback chain:
// the precomputed lifetime-volume table when present, otherwise volumes summed
// from the market's own trades.
func Resolve(volumes []*domain.UserVolume, trades []*domain.RawTrade) *Assignment {
	if len(volumes) > 0 {
		return FromVolumes(volumes)
	}
	return FromTrades(trades)
}

// FromVolumes classifies users from a precomputed lifetime-volume table.
func FromVolumes(volumes []*domain.UserVolume) *Assignment {
	seg := make(map[string]domain.Segment, len(volumes))
	for _, v := range volumes {
		seg[strings.ToLower(v.UserID)] = domain.SegmentForVolume(v.LifetimeUSD)
	}
	return &Assignment{Segments: seg, Source: SourceVolumeTable}
}

// FromTrades derives per-user volumes by summing usd_value across all of a
// user's trades for the market, counting both counterparties of each row.
func FromTrades(trades []*domain.RawTrade) *Assignment {
	totals := make(map[string]float64)
	for _, t := range trades {
		totals[strings.ToLower(t.Maker)] += t.USDAmount
		totals[strings.ToLower(t.Taker)] += t.USDAmount
	}
	seg := make(map[string]domain.Segment, len(totals))
	for user, total := range totals {
		seg[user] = domain.SegmentForVolume(total)
	}
	return &Assignment{Segments: seg, Source: SourceDerived}
}
