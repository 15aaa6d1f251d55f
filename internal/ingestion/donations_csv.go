package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"election-market-lab/internal/domain"
)

// DonationReadResult carries filtered donations plus skip accounting. The
// national file is orders of magnitude larger than any one event's slice, so
// KeptRows versus ScannedRows is worth logging.
type DonationReadResult struct {
	Donations   []*domain.Donation
	ScannedRows int
	SkippedRows int // rows with an unparseable date or amount
}

// ReadDonations streams the national donation CSV and keeps DEM/REP rows whose
// candidate passes the keep predicate. A nil predicate keeps every DEM/REP
// row. Expected columns: Party, Candidate, Donator, Received,
// Donation_Amount_USD. The file never fits in memory as parsed structs, which
// is why filtering happens during the scan rather than after.
func ReadDonations(r io.Reader, eventSlug string, keep func(candidate string) bool) (*DonationReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("donations file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read donations header: %w", err)
	}
	h := parseHeader(first)

	partyIdx, err := h.index("party")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}
	candidateIdx, err := h.index("candidate")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}
	donatorIdx, err := h.index("donator")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}
	receivedIdx, err := h.index("received")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}
	amountIdx, err := h.index("donation_amount_usd")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}

	result := &DonationReadResult{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read donations row: %w", err)
		}
		result.ScannedRows++

		party := domain.Party(field(record, partyIdx))
		if party != domain.PartyDem && party != domain.PartyRep {
			continue
		}
		candidate := field(record, candidateIdx)
		if keep != nil && !keep(candidate) {
			continue
		}

		date, err := ParseDonationDate(field(record, receivedIdx))
		if err != nil {
			result.SkippedRows++
			continue
		}
		amount, err := strconv.ParseFloat(field(record, amountIdx), 64)
		if err != nil {
			result.SkippedRows++
			continue
		}

		result.Donations = append(result.Donations, &domain.Donation{
			EventSlug: eventSlug,
			Donor:     field(record, donatorIdx),
			Party:     party,
			Candidate: candidate,
			Date:      date,
			AmountUSD: amount,
		})
	}

	return result, nil
}

// ScanCandidates streams only the Candidate column out of the donation file,
// deduplicated, for candidate matching. Capped because matching needs the
// vocabulary, not the full census.
func ScanCandidates(r io.Reader, limit int) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("donations file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read donations header: %w", err)
	}
	h := parseHeader(first)
	candidateIdx, err := h.index("candidate")
	if err != nil {
		return nil, fmt.Errorf("donations file: %w", err)
	}

	seen := make(map[string]struct{})
	var out []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read donations row: %w", err)
		}
		v := field(record, candidateIdx)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
