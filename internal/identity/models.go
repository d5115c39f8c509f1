// Package identity holds the user records the core consumes. Registration and
// login flows live outside this service; what matters here is one identity
// record per user plus a role-specific extension record keyed by the same id,
// selected through an explicit role tag instead of subtype inheritance.
package identity

import (
	"time"

	"donorlift/pkg/domain"
)

// Role tags which extension record applies to a user.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleCharity   Role = "charity"
	RoleAdmin     Role = "admin"
)

var validRoles = map[Role]bool{
	RoleDonor:     true,
	RoleVolunteer: true,
	RoleCharity:   true,
	RoleAdmin:     true,
}

func (r Role) IsValid() bool { return validRoles[r] }
func (r Role) String() string { return string(r) }

// User is the shared identity record. Role-specific fields live in the
// extension records below, never here.
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// DonorProfile extends a RoleDonor user.
type DonorProfile struct {
	UserID      domain.UserID
	DisplayName string
	Phone       string
}

// VolunteerProfile extends a RoleVolunteer user.
type VolunteerProfile struct {
	UserID        domain.UserID
	DisplayName   string
	Phone         string
	ServiceRadius float64 // km, advisory
}

// CharityProfile extends a RoleCharity user. CharityID is the organization
// the user acts for; donations and pickup requests reference it, not the
// user id, so several staff accounts can serve one organization.
type CharityProfile struct {
	UserID    domain.UserID
	CharityID domain.CharityID
	OrgName   string
	Address   string
	Verified  bool
}
