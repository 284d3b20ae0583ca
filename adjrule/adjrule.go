// Package adjrule implements the host calendar API's view of a daylight
// saving window: a date range, the amount the clock moves, and the two
// recurring moments within a year at which it moves in and out.
//
// Offsets in this package follow the conventional UTC-offset sign (positive
// means ahead of UTC). The wire model in package tzdef uses the opposite
// convention; the conversion code there is responsible for flipping signs,
// never this package.
package adjrule

import (
	"errors"
	"fmt"
	"time"

	"github.com/nholt/go-tzdef/internal/datemath"
)

// LastWeek is the week index that selects the last occurrence of a weekday
// within a month in a floating TransitionTime.
const LastWeek = 5

// TransitionTime describes the moment within an arbitrary year at which an
// adjustment takes effect. It comes in two forms: a fixed date (month and
// day) or a floating day (the nth or last weekday of a month). Both carry
// the wall-clock time of day at which the switch happens.
type TransitionTime struct {
	// Month is the month the transition occurs in.
	Month time.Month `yaml:"month"`
	// Day is the day of the month for the fixed-date form.
	Day int `yaml:"day,omitempty"`
	// Week selects the occurrence of Weekday for the floating form:
	// 1 through 4 mean the nth occurrence, LastWeek (5) means the last.
	Week int `yaml:"week,omitempty"`
	// Weekday is the day of the week for the floating form.
	Weekday time.Weekday `yaml:"weekday,omitempty"`
	// TimeOfDay is the wall-clock time of the transition, relative to 00:00.
	TimeOfDay time.Duration `yaml:"time_of_day"`
	// IsFixedDate is true for the fixed-date form.
	IsFixedDate bool `yaml:"is_fixed_date,omitempty"`
}

// NewFixedDate returns a fixed-date TransitionTime, e.g. "April 1st at 02:00".
func NewFixedDate(month time.Month, day int, timeOfDay time.Duration) TransitionTime {
	return TransitionTime{Month: month, Day: day, TimeOfDay: timeOfDay, IsFixedDate: true}
}

// NewFloating returns a floating-day TransitionTime, e.g.
// "second Sunday of March at 02:00" (week 2) or
// "last Sunday of October at 03:00" (week LastWeek).
func NewFloating(month time.Month, week int, weekday time.Weekday, timeOfDay time.Duration) TransitionTime {
	return TransitionTime{Month: month, Week: week, Weekday: weekday, TimeOfDay: timeOfDay}
}

// Validate checks the descriptor's fields against their allowed ranges.
// All violations are reported, joined into a single error.
func (t TransitionTime) Validate() error {
	var errs error
	if t.Month < time.January || t.Month > time.December {
		errs = errors.Join(errs, fmt.Errorf("month %d: out of range", t.Month))
	}
	if t.TimeOfDay < 0 || t.TimeOfDay >= 24*time.Hour {
		errs = errors.Join(errs, fmt.Errorf("time of day %v: out of range", t.TimeOfDay))
	}
	if t.IsFixedDate {
		if t.Day < 1 || t.Day > 31 {
			errs = errors.Join(errs, fmt.Errorf("day %d: out of range", t.Day))
		}
	} else {
		if t.Week < 1 || t.Week > LastWeek {
			errs = errors.Join(errs, fmt.Errorf("week %d: out of range", t.Week))
		}
		if t.Weekday < time.Sunday || t.Weekday > time.Saturday {
			errs = errors.Join(errs, fmt.Errorf("weekday %d: out of range", t.Weekday))
		}
	}
	return errs
}

// DayOfMonth resolves the descriptor to a concrete day of its month in the
// given year. For the fixed-date form the day is clamped to the month's
// length, so "February 30th" resolves to the 28th or 29th. For the floating
// form a week index whose occurrence does not exist falls back to the last
// occurrence, matching host calendar behavior where week 5 means "last".
func (t TransitionTime) DayOfMonth(year int) int {
	if t.IsFixedDate {
		if max := datemath.DaysInMonth(year, t.Month); t.Day > max {
			return max
		}
		return t.Day
	}
	if t.Week == LastWeek {
		return datemath.LastWeekday(year, t.Month, t.Weekday)
	}
	return datemath.NthWeekday(year, t.Month, t.Weekday, t.Week)
}

// Rule is one adjustment rule of a time zone: between DateStart and DateEnd,
// the zone moves its clock by DaylightDelta at DaylightTransitionStart and
// moves it back at DaylightTransitionEnd each year.
type Rule struct {
	// DateStart and DateEnd bound the years the rule applies to. Both are
	// calendar dates: the time-of-day component must be zero.
	DateStart time.Time `yaml:"date_start"`
	DateEnd   time.Time `yaml:"date_end"`

	// DaylightDelta is the amount the clock moves forward while daylight
	// time is in effect. Zero means the rule describes a span without
	// daylight saving.
	DaylightDelta time.Duration `yaml:"daylight_delta"`

	// DaylightTransitionStart and DaylightTransitionEnd are the yearly
	// moments the zone enters and leaves daylight time. They are only
	// meaningful when DaylightDelta is non-zero.
	DaylightTransitionStart TransitionTime `yaml:"daylight_transition_start"`
	DaylightTransitionEnd   TransitionTime `yaml:"daylight_transition_end"`
}

// New builds a Rule and validates it. Start and end must be calendar dates
// (zero time of day) with start not after end; the transition descriptors
// are validated when DaylightDelta is non-zero.
func New(start, end time.Time, delta time.Duration, in, out TransitionTime) (Rule, error) {
	r := Rule{
		DateStart:               start,
		DateEnd:                 end,
		DaylightDelta:           delta,
		DaylightTransitionStart: in,
		DaylightTransitionEnd:   out,
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Validate checks the rule's structural constraints, reporting all
// violations joined into a single error.
func (r Rule) Validate() error {
	var errs error
	if !dateOnly(r.DateStart) {
		errs = errors.Join(errs, fmt.Errorf("date start %v: not a calendar date", r.DateStart))
	}
	if !dateOnly(r.DateEnd) {
		errs = errors.Join(errs, fmt.Errorf("date end %v: not a calendar date", r.DateEnd))
	}
	if r.DateEnd.Before(r.DateStart) {
		errs = errors.Join(errs, fmt.Errorf("date end %v before date start %v", r.DateEnd, r.DateStart))
	}
	if r.DaylightDelta != 0 {
		if err := r.DaylightTransitionStart.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("daylight transition start: %w", err))
		}
		if err := r.DaylightTransitionEnd.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("daylight transition end: %w", err))
		}
	}
	return errs
}

// SupportsDaylight reports whether the rule describes an actual daylight
// saving window rather than a constant-offset span.
func (r Rule) SupportsDaylight() bool {
	return r.DaylightDelta != 0
}

func dateOnly(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
