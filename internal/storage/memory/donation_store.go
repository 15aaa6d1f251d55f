package memory

import (
	"context"
	"sort"
	"sync"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

// DonationStore is an in-memory implementation of storage.DonationStore.
// Duplicate rows are legitimate in the source data, so it keeps a plain slice.
type DonationStore struct {
	mu   sync.RWMutex
	data []*domain.Donation
}

// NewDonationStore creates a new in-memory donation store.
func NewDonationStore() *DonationStore {
	return &DonationStore{}
}

// InsertBulk adds multiple donations.
func (s *DonationStore) InsertBulk(_ context.Context, donations []*domain.Donation) error {
	if len(donations) == 0 {
		return nil
	}

	for _, d := range donations {
		if d == nil || d.EventSlug == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range donations {
		copy := *d
		s.data = append(s.data, &copy)
	}

	return nil
}

// GetByEventSlug retrieves all donations for an event, ordered by
// (date ASC, donor ASC).
func (s *DonationStore) GetByEventSlug(_ context.Context, eventSlug string) ([]*domain.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Donation
	for _, d := range s.data {
		if d.EventSlug == eventSlug {
			copy := *d
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Donor < result[j].Donor
	})

	return result, nil
}

var _ storage.DonationStore = (*DonationStore)(nil)
