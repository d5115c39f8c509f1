package service

import (
	"context"
	"errors"
	"time"

	"donorlift/internal/audit"
	"donorlift/internal/availability"
	"donorlift/internal/platform/metrics"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
	"donorlift/pkg/platform/sentinel"
	"donorlift/pkg/requestcontext"
)

// Store is the persistence surface the service needs; satisfied by both the
// memory and Postgres implementations in the parent package.
type Store interface {
	Save(ctx context.Context, schedule *availability.Schedule) error
	GetByVolunteer(ctx context.Context, volunteerID domain.UserID) (*availability.Schedule, error)
	Delete(ctx context.Context, volunteerID domain.UserID) error
	AppendUnavailability(ctx context.Context, volunteerID domain.UserID, window availability.Unavailability) error
	ListActive(ctx context.Context) ([]*availability.Schedule, error)
}

// Service owns the volunteer availability workflows: wholesale schedule
// replacement, unavailability appends, point-in-time checks, and the
// time-based volunteer matcher.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
}

func New(store Store, auditor *audit.Publisher, metrics *metrics.Metrics) *Service {
	return &Service{store: store, auditor: auditor, metrics: metrics}
}

// Replace validates and stores a volunteer's schedule, overwriting any
// previous one wholesale. Temporary unavailability windows appended earlier
// survive a replacement; they are managed through AddUnavailability, not the
// schedule body.
func (s *Service) Replace(ctx context.Context, volunteerID domain.UserID, schedule *availability.Schedule) (*availability.Schedule, error) {
	if schedule.Preferences.MaxPickupsPerDay == 0 {
		schedule.Preferences.MaxPickupsPerDay = availability.DefaultMaxPickupsPerDay
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	schedule.VolunteerID = volunteerID
	schedule.UpdatedAt = now

	existing, err := s.store.GetByVolunteer(ctx, volunteerID)
	switch {
	case err == nil:
		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
		schedule.Unavailability = append(existing.Unavailability, schedule.Unavailability...)
	case errors.Is(err, sentinel.ErrNotFound):
		schedule.ID = domain.NewScheduleID()
		schedule.CreatedAt = now
	default:
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load schedule", err)
	}

	if err := s.store.Save(ctx, schedule); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to save schedule", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionScheduleReplaced,
		Actor:   volunteerID.String(),
		Subject: schedule.ID.String(),
	})
	return schedule, nil
}

// Get returns the volunteer's own schedule.
func (s *Service) Get(ctx context.Context, volunteerID domain.UserID) (*availability.Schedule, error) {
	schedule, err := s.store.GetByVolunteer(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no availability schedule")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load schedule", err)
	}
	return schedule, nil
}

// Delete removes the volunteer's schedule entirely.
func (s *Service) Delete(ctx context.Context, volunteerID domain.UserID) error {
	if err := s.store.Delete(ctx, volunteerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no availability schedule")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete schedule", err)
	}
	s.auditor.Emit(ctx, audit.Event{
		Action: audit.ActionScheduleDeleted,
		Actor:  volunteerID.String(),
	})
	return nil
}

// AddUnavailability appends an override window to the existing schedule.
func (s *Service) AddUnavailability(ctx context.Context, volunteerID domain.UserID, window availability.Unavailability) error {
	if window.To.Before(window.From) {
		return dErrors.New(dErrors.CodeBadRequest, "unavailability window end precedes start")
	}
	if err := s.store.AppendUnavailability(ctx, volunteerID, window); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no availability schedule")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to append unavailability", err)
	}
	s.auditor.Emit(ctx, audit.Event{
		Action: audit.ActionUnavailabilityAdded,
		Actor:  volunteerID.String(),
		Detail: window.Reason,
	})
	return nil
}

// CheckAt answers "is this volunteer available at instant t". A missing
// schedule resolves to unavailable; absence is not an error.
func (s *Service) CheckAt(ctx context.Context, volunteerID domain.UserID, at time.Time) (bool, error) {
	schedule, err := s.store.GetByVolunteer(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to load schedule", err)
	}
	return schedule.AvailableAt(at), nil
}

// FindAvailableVolunteers scans all active schedules and returns volunteers
// whose schedule admits the requested instant. An empty result is normal.
func (s *Service) FindAvailableVolunteers(ctx context.Context, at time.Time) ([]availability.Match, error) {
	schedules, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load schedules", err)
	}
	s.metrics.IncMatcherScans()
	return availability.MatchAt(schedules, at), nil
}
