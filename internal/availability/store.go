package availability

import (
	"context"

	"donorlift/pkg/domain"
)

// Store persists volunteer schedules. One schedule per volunteer; Save
// replaces the stored schedule wholesale. Stores speak sentinel errors.
type Store interface {
	Save(ctx context.Context, schedule *Schedule) error
	GetByVolunteer(ctx context.Context, volunteerID domain.UserID) (*Schedule, error)
	Delete(ctx context.Context, volunteerID domain.UserID) error
	AppendUnavailability(ctx context.Context, volunteerID domain.UserID, window Unavailability) error
	ListActive(ctx context.Context) ([]*Schedule, error)
}
