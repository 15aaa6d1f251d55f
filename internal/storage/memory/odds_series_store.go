package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// OddsSeriesStore is an in-memory implementation of storage.OddsSeriesStore.
type OddsSeriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.OddsPoint // keyed by composite key
}

// NewOddsSeriesStore creates a new in-memory odds series store.
func NewOddsSeriesStore() *OddsSeriesStore {
	return &OddsSeriesStore{
		data: make(map[string]*domain.OddsPoint),
	}
}

func oddsKey(marketID string, dayOffset int, segment domain.Segment) string {
	return fmt.Sprintf("%s|%d|%s", marketID, dayOffset, segment)
}

// InsertBulk adds multiple points atomically. Fails entire batch on any duplicate.
func (s *OddsSeriesStore) InsertBulk(_ context.Context, points []*domain.OddsPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.MarketID == "" || p.Segment == "" {
			return storage.ErrInvalidInput
		}
		key := oddsKey(p.MarketID, p.DayOffset, p.Segment)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[oddsKey(p.MarketID, p.DayOffset, p.Segment)] = copyOddsPoint(p)
	}

	return nil
}

// GetByMarketID retrieves all points for a market, ordered by
// (day_offset ASC, segment ASC).
func (s *OddsSeriesStore) GetByMarketID(_ context.Context, marketID string) ([]*domain.OddsPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OddsPoint
	for _, p := range s.data {
		if p.MarketID == marketID {
			result = append(result, copyOddsPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOffset != result[j].DayOffset {
			return result[i].DayOffset < result[j].DayOffset
		}
		return result[i].Segment < result[j].Segment
	})

	return result, nil
}

// copyOddsPoint deep-copies a point; Odds is a pointer and must not alias.
func copyOddsPoint(p *domain.OddsPoint) *domain.OddsPoint {
	c := *p
	if p.Odds != nil {
		v := *p.Odds
		c.Odds = &v
	}
	return &c
}

var _ storage.OddsSeriesStore = (*OddsSeriesStore)(nil)
