package identity

import (
	"context"
	"strings"
	"sync"

	"donorlift/pkg/domain"
	"donorlift/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	users      map[domain.UserID]*User
	byEmail    map[string]domain.UserID
	volunteers map[domain.UserID]*VolunteerProfile
	charities  map[domain.UserID]*CharityProfile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:      make(map[domain.UserID]*User),
		byEmail:    make(map[string]domain.UserID),
		volunteers: make(map[domain.UserID]*VolunteerProfile),
		charities:  make(map[domain.UserID]*CharityProfile),
	}
}

func (s *InMemoryStore) GetUser(_ context.Context, id domain.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *InMemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *InMemoryStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryStore) GetVolunteerProfile(_ context.Context, id domain.UserID) (*VolunteerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.volunteers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (s *InMemoryStore) GetCharityProfile(_ context.Context, id domain.UserID) (*CharityProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.charities[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (s *InMemoryStore) SaveVolunteerProfile(_ context.Context, profile *VolunteerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.volunteers[profile.UserID] = &cp
	return nil
}

func (s *InMemoryStore) SaveCharityProfile(_ context.Context, profile *CharityProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.charities[profile.UserID] = &cp
	return nil
}
