// Package availability models a volunteer's declared time windows and decides
// whether the volunteer can be matched to a pickup at a given instant.
package availability

import (
	"regexp"
	"time"

	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// Kind discriminates the four mutually exclusive schedule shapes.
type Kind string

const (
	KindRecurringWeekly Kind = "recurring_weekly"
	KindSpecificDates   Kind = "specific_dates"
	KindDateRange       Kind = "date_range"
	KindAlwaysAvailable Kind = "always_available"
)

var validKinds = map[Kind]bool{
	KindRecurringWeekly: true,
	KindSpecificDates:   true,
	KindDateRange:       true,
	KindAlwaysAvailable: true,
}

// IsValid checks if the kind is one of the supported schedule shapes.
func (k Kind) IsValid() bool { return validKinds[k] }

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Slot is a half-open [Start, End) window within one day, in "HH:MM" local
// time. Comparison is lexicographic on the HH:MM strings, which is correct for
// same-day slots but cannot express a slot crossing midnight (e.g. 22:00-02:00);
// that limitation is inherited behavior and kept.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether the HH:MM time of day falls inside the slot.
func (s Slot) Contains(hhmm string) bool {
	return s.Start <= hhmm && hhmm < s.End
}

// Validate rejects malformed or inverted slots.
func (s Slot) Validate() error {
	if !hhmmPattern.MatchString(s.Start) || !hhmmPattern.MatchString(s.End) {
		return dErrors.Newf(dErrors.CodeBadRequest, "time slot must use HH:MM, got %q-%q", s.Start, s.End)
	}
	if s.Start >= s.End {
		return dErrors.Newf(dErrors.CodeBadRequest, "time slot start %q must precede end %q", s.Start, s.End)
	}
	return nil
}

// DaySlots binds slots to a weekday (0 = Sunday .. 6 = Saturday).
type DaySlots struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Slots     []Slot `json:"slots"`
}

// DateSlots binds slots to one calendar date ("2006-01-02"), compared
// timezone-naively against the instant's local date.
type DateSlots struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// RecurringWeekly repeats the same weekday windows every week.
type RecurringWeekly struct {
	Days []DaySlots `json:"days"`
}

// SpecificDates enumerates individual calendar dates.
type SpecificDates struct {
	Dates []DateSlots `json:"dates"`
}

// DateRange covers a contiguous period with optional weekday restriction.
// An empty Days set means every weekday inside the range qualifies.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  []int     `json:"days,omitempty"`
	Slots []Slot    `json:"slots"`
}

// AlwaysAvailable applies the same slots every day; no slots at all means
// unconstrained 24/7 availability.
type AlwaysAvailable struct {
	Slots []Slot `json:"slots,omitempty"`
}

// Unavailability is an override window with inclusive bounds. It only ever
// suppresses availability, regardless of the schedule shape underneath.
type Unavailability struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

// Covers reports whether the instant falls inside the window.
func (u Unavailability) Covers(t time.Time) bool {
	return !t.Before(u.From) && !t.After(u.To)
}

// TransportMode is how the volunteer travels to pickups. Informational.
type TransportMode string

const (
	TransportCar     TransportMode = "car"
	TransportBicycle TransportMode = "bicycle"
	TransportVan     TransportMode = "van"
	TransportOnFoot  TransportMode = "on_foot"
)

// Preferences are matcher hints. MaxPickupsPerDay is stored and surfaced but
// not enforced by the resolver; enforcement would be a separately flagged
// feature.
type Preferences struct {
	MaxPickupsPerDay int           `json:"maxPickupsPerDay"`
	TransportMode    TransportMode `json:"transportationMode,omitempty"`
}

// DefaultMaxPickupsPerDay applies when a submission omits the preference.
const DefaultMaxPickupsPerDay = 3

// Schedule is a tagged union: Kind selects exactly one of the four variant
// pointers, enforced by Validate at the trust boundary. The resolver only ever
// consults the variant matching Kind.
type Schedule struct {
	ID          domain.ScheduleID `json:"id"`
	VolunteerID domain.UserID     `json:"volunteerId"`
	Kind        Kind              `json:"type"`

	Recurring *RecurringWeekly `json:"recurringSchedule,omitempty"`
	Specific  *SpecificDates   `json:"specificDates,omitempty"`
	Range     *DateRange       `json:"dateRange,omitempty"`
	Always    *AlwaysAvailable `json:"generalTimeSlots,omitempty"`

	Unavailability []Unavailability `json:"temporaryUnavailability,omitempty"`
	Preferences    Preferences      `json:"preferences"`
	IsActive       bool             `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate enforces the sum-type invariant: the variant matching Kind must be
// present and well formed. Variants not matching Kind are ignored by the
// resolver, so their presence is tolerated but never consulted.
func (s *Schedule) Validate() error {
	if !s.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown schedule type %q", s.Kind)
	}
	switch s.Kind {
	case KindRecurringWeekly:
		if s.Recurring == nil {
			return dErrors.New(dErrors.CodeBadRequest, "recurring_weekly schedule requires recurringSchedule")
		}
		for _, d := range s.Recurring.Days {
			if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
				return dErrors.Newf(dErrors.CodeBadRequest, "dayOfWeek %d out of range 0..6", d.DayOfWeek)
			}
			if err := validateSlots(d.Slots); err != nil {
				return err
			}
		}
	case KindSpecificDates:
		if s.Specific == nil {
			return dErrors.New(dErrors.CodeBadRequest, "specific_dates schedule requires specificDates")
		}
		for _, d := range s.Specific.Dates {
			if _, err := time.Parse("2006-01-02", d.Date); err != nil {
				return dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q, want YYYY-MM-DD", d.Date)
			}
			if err := validateSlots(d.Slots); err != nil {
				return err
			}
		}
	case KindDateRange:
		if s.Range == nil {
			return dErrors.New(dErrors.CodeBadRequest, "date_range schedule requires dateRange")
		}
		if s.Range.End.Before(s.Range.Start) {
			return dErrors.New(dErrors.CodeBadRequest, "date range end precedes start")
		}
		for _, day := range s.Range.Days {
			if day < 0 || day > 6 {
				return dErrors.Newf(dErrors.CodeBadRequest, "dayOfWeek %d out of range 0..6", day)
			}
		}
		if err := validateSlots(s.Range.Slots); err != nil {
			return err
		}
	case KindAlwaysAvailable:
		// A missing or empty variant means unconstrained 24/7.
		if s.Always != nil {
			if err := validateSlots(s.Always.Slots); err != nil {
				return err
			}
		}
	}
	if s.Preferences.MaxPickupsPerDay < 1 {
		return dErrors.New(dErrors.CodeBadRequest, "maxPickupsPerDay must be at least 1")
	}
	for _, u := range s.Unavailability {
		if u.To.Before(u.From) {
			return dErrors.New(dErrors.CodeBadRequest, "unavailability window end precedes start")
		}
	}
	return nil
}

func validateSlots(slots []Slot) error {
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return err
		}
	}
	return nil
}
