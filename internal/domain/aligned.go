package domain

// AlignedRow is one canonical period with all four signals reindexed onto it.
// The canonical axis comes from the donation-cumulative series; every column is
// nullable and nominally in [0,1]. Rows are ephemeral, rebuilt each run.
type AlignedRow struct {
	PeriodKey                    string
	DonationCumulativeRatio      *float64
	DonationNonCumulativeRatio   *float64
	PredictionCumulativeOdds     *float64 // forward-filled across quiet periods
	PredictionNonCumulativePrice *float64 // last price in period, gap when absent
}
