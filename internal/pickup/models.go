// Package pickup models the logistics record that tracks volunteer assignment
// and physical handoff for one donation.
package pickup

import (
	"time"

	"donorlift/internal/geo"
	"donorlift/pkg/domain"
)

// Status of a pickup request as the handoff progresses.
type Status string

const (
	StatusAvailable       Status = "available"
	StatusAccepted        Status = "accepted"
	StatusEnRoutePickup   Status = "en_route_pickup"
	StatusArrivedPickup   Status = "arrived_pickup"
	StatusPickedUp        Status = "picked_up"
	StatusEnRouteDelivery Status = "en_route_delivery"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusAvailable:       true,
	StatusAccepted:        true,
	StatusEnRoutePickup:   true,
	StatusArrivedPickup:   true,
	StatusPickedUp:        true,
	StatusEnRouteDelivery: true,
	StatusDelivered:       true,
	StatusCancelled:       true,
}

// IsValid checks the status against the eight known values.
func (s Status) IsValid() bool { return validStatuses[s] }

func (s Status) String() string { return string(s) }

// Priority mirrors the donation's urgency at creation time and is never
// recomputed afterwards.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Rank orders priorities for sorting; unknown values sort lowest.
func (p Priority) Rank() int { return priorityRank[p] }

func (p Priority) IsValid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Item is a snapshot of one donated item, duplicated from the donation at
// creation time rather than referenced live.
type Item struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Condition   string `json:"condition"`
}

// Metadata carries handoff timestamps and flags captured at submission.
// AcceptedAt and CompletedAt are set exactly once, on first entry into
// accepted/delivered; re-entry must not overwrite them.
type Metadata struct {
	SubmittedAt       time.Time  `json:"submittedAt"`
	AcceptedAt        *time.Time `json:"acceptedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	Refrigerated      bool       `json:"refrigerated,omitempty"`
	Fragile           bool       `json:"fragile,omitempty"`
	ContactPreference string     `json:"contactPreference,omitempty"`
}

// Request is the pickup logistics record, linked 1:1 to a donation.
// VolunteerID stays nil while the request is available; Coordinates may be nil
// when the submission address could not be geocoded.
type Request struct {
	ID          domain.PickupID   `json:"id"`
	DonationID  domain.DonationID `json:"donationId"`
	CharityID   domain.CharityID  `json:"charityId"`
	VolunteerID *domain.UserID    `json:"volunteerId,omitempty"`
	Coordinates *geo.Point        `json:"pickupCoordinates,omitempty"` // [lat, lon] pair on the wire
	Items       []Item            `json:"items"`
	Priority    Priority          `json:"priority"`
	Status      Status            `json:"status"`
	Metadata    Metadata          `json:"metadata"`
}
