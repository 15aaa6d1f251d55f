// Package ingestion reads the four source file formats: per-market trade
// exports, the national donation file, reference price histories, and the
// optional precomputed user-volume table. Readers are header-driven so column
// order in the exports does not matter, and malformed rows are skipped and
// counted rather than failing the file.
package ingestion

import (
	"fmt"
	"strings"
)

// header maps lowercased column names to their positions.
type header map[string]int

func parseHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

// index returns the position of a required column.
func (h header) index(name string) (int, error) {
	i, ok := h[name]
	if !ok {
		return 0, fmt.Errorf("missing required column %q", name)
	}
	return i, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
