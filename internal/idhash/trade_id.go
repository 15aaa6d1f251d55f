package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(market_id|timestamp|maker|taker|row_index)
// Returns hex-encoded hash (64 characters).
//
// Source files carry no native row identifier, so the hash doubles as the
// duplicate-detection key when archiving raw trades.
func ComputeTradeID(marketID, timestamp, maker, taker string, rowIndex int) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		marketID,
		timestamp,
		maker,
		taker,
		rowIndex,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeDonationID computes a deterministic donation record id.
// Formula: SHA256(event_slug|party|candidate|donator|date|amount)
// Duplicate source rows are legitimate (a donor may give the same amount on
// the same day twice), so the row index participates in the hash.
func ComputeDonationID(eventSlug, party, candidate, donator, date string, amount float64, rowIndex int) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%.2f|%d",
		eventSlug,
		party,
		candidate,
		donator,
		date,
		amount,
		rowIndex,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
