package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// PeriodSeriesStore is an in-memory implementation of storage.PeriodSeriesStore.
type PeriodSeriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PeriodPoint // keyed by composite key
}

// NewPeriodSeriesStore creates a new in-memory period series store.
func NewPeriodSeriesStore() *PeriodSeriesStore {
	return &PeriodSeriesStore{
		data: make(map[string]*domain.PeriodPoint),
	}
}

func periodKey(p *domain.PeriodPoint) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", p.EventSlug, p.Granularity, p.Variant, p.PeriodKey, p.Segment)
}

// InsertBulk adds multiple points atomically. Fails entire batch on any duplicate.
func (s *PeriodSeriesStore) InsertBulk(_ context.Context, points []*domain.PeriodPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.EventSlug == "" || p.PeriodKey == "" || p.Segment == "" {
			return storage.ErrInvalidInput
		}
		key := periodKey(p)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[periodKey(p)] = copyPeriodPoint(p)
	}

	return nil
}

// GetBySeries retrieves one series, ordered by (period_key ASC, segment ASC).
func (s *PeriodSeriesStore) GetBySeries(_ context.Context, eventSlug string, g domain.Granularity, v domain.Variant) ([]*domain.PeriodPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PeriodPoint
	for _, p := range s.data {
		if p.EventSlug == eventSlug && p.Granularity == g && p.Variant == v {
			result = append(result, copyPeriodPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PeriodKey != result[j].PeriodKey {
			return result[i].PeriodKey < result[j].PeriodKey
		}
		return result[i].Segment < result[j].Segment
	})

	return result, nil
}

// copyPeriodPoint deep-copies a point; DemRatio is a pointer and must not alias.
func copyPeriodPoint(p *domain.PeriodPoint) *domain.PeriodPoint {
	c := *p
	if p.DemRatio != nil {
		v := *p.DemRatio
		c.DemRatio = &v
	}
	return &c
}

var _ storage.PeriodSeriesStore = (*PeriodSeriesStore)(nil)
