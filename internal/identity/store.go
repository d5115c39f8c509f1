package identity

import (
	"context"

	"donorlift/pkg/domain"
)

// Store resolves identity and extension records. Writes happen through the
// external registration flows; the core only needs lookups plus dev seeding.
type Store interface {
	GetUser(ctx context.Context, id domain.UserID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	GetVolunteerProfile(ctx context.Context, id domain.UserID) (*VolunteerProfile, error)
	GetCharityProfile(ctx context.Context, id domain.UserID) (*CharityProfile, error)
	SaveVolunteerProfile(ctx context.Context, profile *VolunteerProfile) error
	SaveCharityProfile(ctx context.Context, profile *CharityProfile) error
}
