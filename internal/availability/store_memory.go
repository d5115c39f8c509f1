package availability

import (
	"context"
	"sync"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

// InMemoryStore keeps schedules keyed by volunteer. Default wiring for
// development and unit tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	schedules map[domain.UserID]*Schedule
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{schedules: make(map[domain.UserID]*Schedule)}
}

func (s *InMemoryStore) Save(_ context.Context, schedule *Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *schedule
	s.schedules[schedule.VolunteerID] = &cp
	return nil
}

func (s *InMemoryStore) GetByVolunteer(_ context.Context, volunteerID domain.UserID) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[volunteerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *schedule
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, volunteerID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[volunteerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.schedules, volunteerID)
	return nil
}

func (s *InMemoryStore) AppendUnavailability(_ context.Context, volunteerID domain.UserID, window Unavailability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[volunteerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	schedule.Unavailability = append(schedule.Unavailability, window)
	return nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []*Schedule
	for _, schedule := range s.schedules {
		if schedule.IsActive {
			cp := *schedule
			active = append(active, &cp)
		}
	}
	return active, nil
}
