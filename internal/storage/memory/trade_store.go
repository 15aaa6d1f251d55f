package memory

import (
	"context"
	"sort"
	"sync"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RawTrade // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.RawTrade),
	}
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(trades))

	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.MarketID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	for _, t := range trades {
		copy := *t
		s.data[t.TradeID] = &copy
	}

	return nil
}

// GetByMarketID retrieves all trades for a market, ordered by trade_id ASC.
func (s *TradeStore) GetByMarketID(_ context.Context, marketID string) ([]*domain.RawTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RawTrade
	for _, t := range s.data {
		if t.MarketID == marketID {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TradeID < result[j].TradeID
	})

	return result, nil
}

// ListMarkets returns the distinct market IDs present, sorted ASC.
func (s *TradeStore) ListMarkets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var markets []string
	for _, t := range s.data {
		if _, ok := seen[t.MarketID]; !ok {
			seen[t.MarketID] = struct{}{}
			markets = append(markets, t.MarketID)
		}
	}
	sort.Strings(markets)

	return markets, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
