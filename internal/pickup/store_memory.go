package pickup

import (
	"context"
	"sync"
	"time"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

// InMemoryStore keeps pickup requests keyed by id.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.PickupID]*Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.PickupID]*Request)}
}

func (s *InMemoryStore) Create(_ context.Context, request *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[request.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *request
	s.requests[request.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.PickupID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *request
	return &cp, nil
}

// UpdateStatus runs the lifecycle mutation while holding the write lock, so
// concurrent transitions on the same request serialize and the set-once
// timestamps cannot be clobbered.
func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.PickupID, target Status, actor domain.UserID, now time.Time) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := request.ApplyStatus(target, actor, now); err != nil {
		return nil, err
	}
	cp := *request
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context, status Status, priority Priority) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Request
	for _, request := range s.requests {
		if status != "" && request.Status != status {
			continue
		}
		if priority != "" && request.Priority != priority {
			continue
		}
		cp := *request
		out = append(out, &cp)
	}
	return out, nil
}
