package availability

import (
	"time"

	"donorlift/pkg/domain"
)

// Match is one volunteer who can take a pickup at the requested instant.
// Preferences ride along for the caller; nothing here enforces them.
type Match struct {
	VolunteerID domain.UserID     `json:"volunteerId"`
	ScheduleID  domain.ScheduleID `json:"scheduleId"`
	Preferences Preferences       `json:"preferences"`
}

// MatchAt applies the availability resolver across a set of schedules.
// Order follows the input scan; no tie-breaking. An empty result is a normal
// outcome, not an error. Distance filtering is a separate predicate applied by
// the pickup listing path, deliberately not fused into the time predicate.
func MatchAt(schedules []*Schedule, at time.Time) []Match {
	matches := make([]Match, 0, len(schedules))
	for _, schedule := range schedules {
		if schedule.AvailableAt(at) {
			matches = append(matches, Match{
				VolunteerID: schedule.VolunteerID,
				ScheduleID:  schedule.ID,
				Preferences: schedule.Preferences,
			})
		}
	}
	return matches
}
