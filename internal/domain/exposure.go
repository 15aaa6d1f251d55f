package domain

// Exposure is a user's effective directional bet size on one day. A negative
// holding in one outcome is economically a positive holding in the opposite
// outcome (short NO ≈ long YES), so it contributes to the opposite bucket.
// Both components are always >= 0.
type Exposure struct {
	Yes float64
	No  float64
}

// ResolveExposure maps raw (YES, NO) holdings into directional exposure.
// A nil holding is treated as zero.
func ResolveExposure(yesHolding, noHolding *float64) Exposure {
	hy := 0.0
	if yesHolding != nil {
		hy = *yesHolding
	}
	hn := 0.0
	if noHolding != nil {
		hn = *noHolding
	}

	var e Exposure
	if hy > 0 {
		e.Yes += hy
	}
	if hn < 0 {
		e.Yes += -hn
	}
	if hn > 0 {
		e.No += hn
	}
	if hy < 0 {
		e.No += -hy
	}
	return e
}
