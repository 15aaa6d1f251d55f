package domain

// Segment is a static size tier assigned to a trader or donor for the whole
// analysis run.
type Segment string

// Segment constants
const (
	SegmentAll    Segment = "all"
	SegmentSmall  Segment = "small"
	SegmentMedium Segment = "medium"
	SegmentLarge  Segment = "large"
)

// Trader tier thresholds in lifetime traded USD volume. Lower bounds are
// inclusive: exactly 10,000 is medium, exactly 1,000,000 is large.
const (
	MediumVolumeThreshold = 10_000
	LargeVolumeThreshold  = 1_000_000
)

// TierSegments lists the strict size tiers, excluding SegmentAll.
var TierSegments = []Segment{SegmentSmall, SegmentMedium, SegmentLarge}

// SegmentForVolume classifies a lifetime traded USD volume into a tier.
// Zero volume is still classified (small).
func SegmentForVolume(volumeUSD float64) Segment {
	switch {
	case volumeUSD >= LargeVolumeThreshold:
		return SegmentLarge
	case volumeUSD >= MediumVolumeThreshold:
		return SegmentMedium
	default:
		return SegmentSmall
	}
}
