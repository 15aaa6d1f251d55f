package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDonationDate parses the donation file's numeric received-date format:
// MMDDYYYY, with a single-digit month collapsing the value to 7 digits
// (1052024 means January 5 2024, not October 5). Leading zeros never survive
// the upstream export, so length disambiguates the month width.
func ParseDonationDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	// Exports sometimes render the column as a float ("10152024.0").
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	if _, err := strconv.Atoi(s); err != nil {
		return time.Time{}, fmt.Errorf("donation date %q is not numeric", raw)
	}

	var month, day, year int
	switch len(s) {
	case 8:
		month, _ = strconv.Atoi(s[:2])
		day, _ = strconv.Atoi(s[2:4])
		year, _ = strconv.Atoi(s[4:])
	case 7:
		month, _ = strconv.Atoi(s[:1])
		day, _ = strconv.Atoi(s[1:3])
		year, _ = strconv.Atoi(s[3:])
	default:
		return time.Time{}, fmt.Errorf("donation date %q has %d digits, want 7 or 8", raw, len(s))
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("donation date %q out of range", raw)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
