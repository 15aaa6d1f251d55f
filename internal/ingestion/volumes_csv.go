package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"election-market-lab/internal/domain"
)

// ReadVolumes parses the optional precomputed lifetime-volume table. Expected
// columns: user_id, cumulative_total_value_max. Rows with an unparseable
// volume are skipped; the segmenter derives volumes from trades when the
// whole file is absent.
func ReadVolumes(r io.Reader) ([]*domain.UserVolume, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("volumes file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read volumes header: %w", err)
	}
	h := parseHeader(first)

	userIdx, err := h.index("user_id")
	if err != nil {
		return nil, fmt.Errorf("volumes file: %w", err)
	}
	volumeIdx, err := h.index("cumulative_total_value_max")
	if err != nil {
		return nil, fmt.Errorf("volumes file: %w", err)
	}

	var volumes []*domain.UserVolume
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read volumes row: %w", err)
		}

		v, err := strconv.ParseFloat(field(record, volumeIdx), 64)
		if err != nil {
			continue
		}
		volumes = append(volumes, &domain.UserVolume{
			UserID:      field(record, userIdx),
			LifetimeUSD: v,
		})
	}

	return volumes, nil
}
