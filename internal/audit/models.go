// Package audit captures an append-only trail of domain actions. Services
// emit events through the Publisher; a background worker fans them out to the
// configured sinks (memory store, Kafka).
package audit

import "time"

// Action identifies what happened.
type Action string

const (
	ActionDonationSubmitted   Action = "donation_submitted"
	ActionDonationConfirmed   Action = "donation_confirmed"
	ActionPickupStatusChanged Action = "pickup_status_changed"
	ActionPickupAccepted      Action = "pickup_accepted"
	ActionScheduleReplaced    Action = "schedule_replaced"
	ActionScheduleDeleted     Action = "schedule_deleted"
	ActionUnavailabilityAdded Action = "unavailability_added"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	Actor       string    `json:"actor,omitempty"`   // user performing the action
	Subject     string    `json:"subject,omitempty"` // entity acted upon (donation/pickup/schedule id)
	Detail      string    `json:"detail,omitempty"`  // e.g. "available->accepted"
	RequestID   string    `json:"requestId,omitempty"`
	ClientIP    string    `json:"clientIp,omitempty"`
	DeviceClass string    `json:"deviceClass,omitempty"`
}
