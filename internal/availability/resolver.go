package availability

import "time"

// AvailableAt is the single source of truth for "can this volunteer be
// matched at instant t". It is total and side-effect free: malformed or
// unknown schedule content resolves to unavailable, never to an error.
//
// Precedence: an inactive schedule, then any temporary unavailability window,
// then the shape selected by Kind.
func (s *Schedule) AvailableAt(t time.Time) bool {
	if s == nil || !s.IsActive {
		return false
	}
	for _, u := range s.Unavailability {
		if u.Covers(t) {
			return false
		}
	}

	hhmm := t.Format("15:04")
	switch s.Kind {
	case KindAlwaysAvailable:
		var slots []Slot
		if s.Always != nil {
			slots = s.Always.Slots
		}
		if len(slots) == 0 {
			return true
		}
		return anySlotContains(slots, hhmm)

	case KindRecurringWeekly:
		if s.Recurring == nil {
			return false
		}
		weekday := int(t.Weekday())
		for _, d := range s.Recurring.Days {
			if d.DayOfWeek == weekday {
				return anySlotContains(d.Slots, hhmm)
			}
		}
		return false

	case KindSpecificDates:
		if s.Specific == nil {
			return false
		}
		date := t.Format("2006-01-02")
		for _, d := range s.Specific.Dates {
			if d.Date == date {
				return anySlotContains(d.Slots, hhmm)
			}
		}
		return false

	case KindDateRange:
		r := s.Range
		if r == nil {
			return false
		}
		if t.Before(r.Start) || t.After(r.End) {
			return false
		}
		if len(r.Days) > 0 && !containsDay(r.Days, int(t.Weekday())) {
			return false
		}
		return anySlotContains(r.Slots, hhmm)

	default:
		// Unknown shape: unavailable is the safe answer.
		return false
	}
}

func anySlotContains(slots []Slot, hhmm string) bool {
	for _, slot := range slots {
		if slot.Contains(hhmm) {
			return true
		}
	}
	return false
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
