// Package donation models the donor-facing record of a gift, from submission
// through charity confirmation.
package donation

import (
	"time"

	"donorlift/internal/geo"
	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// Status of a donation from the donor's point of view. All statuses except
// confirmed are projections of the paired pickup request; confirmed is
// reachable only through the charity confirmation workflow.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

// Urgency expresses how quickly the donor wants the gift collected. It is
// copied onto the pickup request as its priority at submission time.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

var urgencyToPriority = map[Urgency]pickup.Priority{
	UrgencyLow:    pickup.PriorityLow,
	UrgencyMedium: pickup.PriorityMedium,
	UrgencyHigh:   pickup.PriorityHigh,
}

func (u Urgency) IsValid() bool {
	_, ok := urgencyToPriority[u]
	return ok
}

// Priority returns the pickup priority this urgency maps to.
func (u Urgency) Priority() pickup.Priority { return urgencyToPriority[u] }

// Item is one donated good as the donor described it.
type Item struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Condition   string `json:"condition"`
}

// Validate checks the fields a donor must fill in.
func (i Item) Validate() error {
	if i.Category == "" {
		return dErrors.New(dErrors.CodeBadRequest, "item category is required")
	}
	if i.Quantity < 1 {
		return dErrors.New(dErrors.CodeBadRequest, "item quantity must be at least 1")
	}
	return nil
}

// Confirmation is the charity's acknowledgement of a delivered donation.
type Confirmation struct {
	ConfirmedAt  time.Time `json:"confirmedAt"`
	ThankYouNote string    `json:"thankYouNote"`
}

// Donation pairs 1:1 with a pickup request created at submission. Coordinates
// may be nil when the pickup address could not be geocoded.
type Donation struct {
	ID           domain.DonationID `json:"id"`
	DonorID      domain.UserID     `json:"donorId"`
	CharityID    domain.CharityID  `json:"charityId"`
	PickupID     domain.PickupID   `json:"pickupId"`
	Items        []Item            `json:"items"`
	Urgency      Urgency           `json:"urgency"`
	Status       Status            `json:"status"`
	Coordinates  *geo.Point        `json:"pickupCoordinates,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Validate checks a donation at submission time.
func (d *Donation) Validate() error {
	if d.CharityID.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "charityId is required")
	}
	if len(d.Items) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "at least one item is required")
	}
	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	if !d.Urgency.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "invalid urgency %q", d.Urgency)
	}
	if d.Coordinates != nil {
		if err := d.Coordinates.Validate(); err != nil {
			return err
		}
	}
	return nil
}
