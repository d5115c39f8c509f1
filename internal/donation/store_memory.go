package donation

import (
	"context"
	"sync"
	"time"

	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

// InMemoryStore keeps donations keyed by id and writes paired pickup requests
// through to the pickup store.
type InMemoryStore struct {
	mu        sync.RWMutex
	donations map[domain.DonationID]*Donation
	pickups   pickup.Store
}

func NewInMemoryStore(pickups pickup.Store) *InMemoryStore {
	return &InMemoryStore{
		donations: make(map[domain.DonationID]*Donation),
		pickups:   pickups,
	}
}

// Create inserts the donation, then the paired pickup request. A pickup
// insert failure unwinds the donation so the pair never exists half-made.
func (s *InMemoryStore) Create(ctx context.Context, d *Donation, request *pickup.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.donations[d.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := copyDonation(d)
	s.donations[d.ID] = cp
	if err := s.pickups.Create(ctx, request); err != nil {
		delete(s.donations, d.ID)
		return err
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.DonationID) (*Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyDonation(d), nil
}

func (s *InMemoryStore) ListByDonor(_ context.Context, donorID domain.UserID) ([]*Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Donation
	for _, d := range s.donations {
		if d.DonorID == donorID {
			out = append(out, copyDonation(d))
		}
	}
	return out, nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, id domain.DonationID, status Status, at time.Time) (*Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = at
	return copyDonation(d), nil
}

// Confirm flips delivered to confirmed while holding the write lock, so two
// racing confirmations cannot both pass the delivered check.
func (s *InMemoryStore) Confirm(_ context.Context, id domain.DonationID, note string, at time.Time) (*Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if d.Status == StatusConfirmed {
		return nil, sentinel.ErrConflict
	}
	if d.Status != StatusDelivered {
		return nil, sentinel.ErrInvalidState
	}
	d.Status = StatusConfirmed
	d.Confirmation = &Confirmation{ConfirmedAt: at, ThankYouNote: note}
	d.UpdatedAt = at
	return copyDonation(d), nil
}

func copyDonation(d *Donation) *Donation {
	cp := *d
	cp.Items = append([]Item(nil), d.Items...)
	if d.Coordinates != nil {
		coords := *d.Coordinates
		cp.Coordinates = &coords
	}
	if d.Confirmation != nil {
		confirmation := *d.Confirmation
		cp.Confirmation = &confirmation
	}
	return &cp
}
