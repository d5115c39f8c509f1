package pickup

import (
	"time"

	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// ApplyStatus mutates the request for a transition to target at instant now,
// performed by actor. The machine is deliberately permissive: a transition is
// rejected only when the target is not one of the eight valid statuses.
// Skipping intermediate states is allowed; the donation projection is defined
// over the set of statuses, not a strict path, so it stays correct either way.
//
// Effects:
//   - entering accepted binds the acting volunteer if none is bound, and sets
//     AcceptedAt if unset
//   - entering delivered sets CompletedAt if unset
//
// Both timestamps are set-once; re-entering a state never overwrites them.
// Callers that need this under concurrent writers must route the mutation
// through a store whose update is check-and-set (both provided stores are).
func (r *Request) ApplyStatus(target Status, actor domain.UserID, now time.Time) error {
	if !target.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "invalid status %q", target)
	}

	if target == StatusAccepted {
		if r.VolunteerID == nil {
			actorCopy := actor
			r.VolunteerID = &actorCopy
		}
		if r.Metadata.AcceptedAt == nil {
			ts := now
			r.Metadata.AcceptedAt = &ts
		}
	}
	if target == StatusDelivered && r.Metadata.CompletedAt == nil {
		ts := now
		r.Metadata.CompletedAt = &ts
	}

	r.Status = target
	return nil
}
