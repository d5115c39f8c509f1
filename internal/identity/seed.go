package identity

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"donorlift/pkg/domain"
)

// SeedDev populates a store with one user per role so local environments can
// exercise the full pickup flow without the external registration service.
// Never call in production wiring.
func SeedDev(ctx context.Context, store Store) error {
	seeds := []struct {
		email string
		role  Role
	}{
		{"donor@donorlift.local", RoleDonor},
		{"volunteer@donorlift.local", RoleVolunteer},
		{"charity@donorlift.local", RoleCharity},
		{"admin@donorlift.local", RoleAdmin},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("dev-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for _, seed := range seeds {
		user := &User{
			ID:           domain.NewUserID(),
			Email:        seed.email,
			PasswordHash: hash,
			Role:         seed.role,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed %s: %w", seed.email, err)
		}
		switch seed.role {
		case RoleVolunteer:
			if err := store.SaveVolunteerProfile(ctx, &VolunteerProfile{
				UserID:      user.ID,
				DisplayName: "Dev Volunteer",
			}); err != nil {
				return fmt.Errorf("seed volunteer profile: %w", err)
			}
		case RoleCharity:
			if err := store.SaveCharityProfile(ctx, &CharityProfile{
				UserID:    user.ID,
				CharityID: domain.NewCharityID(),
				OrgName:   "Dev Charity",
			}); err != nil {
				return fmt.Errorf("seed charity profile: %w", err)
			}
		}
	}
	return nil
}
