// Package availability models weekly availability declarations and the
// aggregation rules that derive a common meeting window from them.
package availability

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeRange is returned when a range declaration does not start
// strictly before it ends.
var ErrInvalidTimeRange = errors.New("availability: invalid time range")

// Day identifies a day of the week. The week starts on Monday; this ordering
// is fixed and locale independent, display labels live in the view layer.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of entries in a weekly declaration.
const DaysInWeek = 7

// String returns the canonical lowercase English name of the day.
func (d Day) String() string {
	switch d {
	case Monday:
		return "monday"
	case Tuesday:
		return "tuesday"
	case Wednesday:
		return "wednesday"
	case Thursday:
		return "thursday"
	case Friday:
		return "friday"
	case Saturday:
		return "saturday"
	case Sunday:
		return "sunday"
	}
	return fmt.Sprintf("day(%d)", int(d))
}

// ParseDay resolves a canonical day name back to its Day value.
func ParseDay(name string) (Day, error) {
	for d := Monday; d <= Sunday; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("availability: unknown day %q", name)
}

// TimeOfDay is a wall-clock time with minute granularity, stored as minutes
// since midnight. Values are comparable with the ordinary integer operators.
// Timezones are deliberately not modelled: every participant shares one
// implicit local time frame.
type TimeOfDay int

const (
	// DayStart is the earliest representable time of day, 00:00.
	DayStart TimeOfDay = 0
	// DayEnd is the latest representable time of day, 23:59.
	DayEnd TimeOfDay = 23*60 + 59
)

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("availability: invalid time %02d:%02d", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses a "HH:MM" string as emitted by time inputs. Exactly
// two digits on each side of the colon and nothing else.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if len(value) != 5 || value[2] != ':' || !isDigits(value[:2]) || !isDigits(value[3:]) {
		return 0, fmt.Errorf("availability: invalid time %q", value)
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	return NewTimeOfDay(hour, minute)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Kind tags a single day declaration.
type Kind int

const (
	// KindUnset means the participant declared nothing for the day.
	KindUnset Kind = iota
	// KindAllFree means the participant is free the whole day.
	KindAllFree
	// KindAllBusy means the participant is busy the whole day.
	KindAllBusy
	// KindRange means the participant is free between From and To.
	KindRange
)

// DayAvailability is one participant's declaration for a single day. The zero
// value is Unset. From and To are only meaningful when Kind is KindRange.
type DayAvailability struct {
	Kind Kind
	From TimeOfDay
	To   TimeOfDay
}

// FreeAllDay declares the whole day free.
func FreeAllDay() DayAvailability {
	return DayAvailability{Kind: KindAllFree}
}

// BusyAllDay declares the whole day busy.
func BusyAllDay() DayAvailability {
	return DayAvailability{Kind: KindAllBusy}
}

// NewRange declares a free window between from and to. The window must have
// positive length; zero-length and inverted ranges are rejected.
func NewRange(from, to TimeOfDay) (DayAvailability, error) {
	d := DayAvailability{Kind: KindRange, From: from, To: to}
	if err := d.Validate(); err != nil {
		return DayAvailability{}, err
	}
	return d, nil
}

// Validate checks the declaration invariants. Range declarations require
// DayStart <= From < To <= DayEnd; the other kinds are valid by construction.
func (d DayAvailability) Validate() error {
	if d.Kind != KindRange {
		return nil
	}
	if d.From < DayStart || d.To > DayEnd {
		return ErrInvalidTimeRange
	}
	if d.From >= d.To {
		return ErrInvalidTimeRange
	}
	return nil
}

// Weekly maps every day of the week to a declaration. The zero value leaves
// all seven days Unset, which also represents "nothing declared yet".
type Weekly [DaysInWeek]DayAvailability

// Get returns the declaration for the given day.
func (w Weekly) Get(day Day) DayAvailability {
	return w[day]
}

// Set replaces the declaration for the given day.
func (w *Weekly) Set(day Day, d DayAvailability) {
	w[day] = d
}

// Declared reports whether any day carries a non-Unset declaration.
func (w Weekly) Declared() bool {
	for _, d := range w {
		if d.Kind != KindUnset {
			return true
		}
	}
	return false
}

// Validate checks every day entry.
func (w Weekly) Validate() error {
	for day, d := range w {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%s: %w", Day(day), err)
		}
	}
	return nil
}
