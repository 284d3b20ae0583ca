package tzdef

import (
	"fmt"
	"time"

	"github.com/nholt/go-tzdef/adjrule"
	"github.com/nholt/go-tzdef/internal/datemath"
)

// TransitionKind distinguishes the two kinds of transitions a group may
// contain. The set is closed; code that branches on the kind switches
// exhaustively and treats anything else as an internal fault.
type TransitionKind int

func (k TransitionKind) String() string {
	switch k {
	case AbsoluteKind:
		return "Absolute"
	case RecurringKind:
		return "Recurring"
	default:
		return "<UNDEFINED>"
	}
}

const (
	// AbsoluteKind is an unconditional transition: switch to the target
	// period and stay there. Used by locations without daylight saving.
	AbsoluteKind TransitionKind = iota
	// RecurringKind is a transition governed by a yearly recurrence.
	RecurringKind
)

// RecurrenceForm is the form of a recurring transition's yearly schedule.
type RecurrenceForm int

func (f RecurrenceForm) String() string {
	switch f {
	case FloatingDay:
		return "FloatingDay"
	case FixedDate:
		return "FixedDate"
	default:
		return "<UNDEFINED>"
	}
}

const (
	// FloatingDay schedules the transition on the nth or last weekday of a
	// month, e.g. "second Sunday of March".
	FloatingDay RecurrenceForm = iota
	// FixedDate schedules the transition on a fixed day of a month,
	// e.g. "April 1st".
	FixedDate
)

// LastOccurrence is the Occurrence value selecting the last instance of a
// weekday within the month in a FloatingDay recurrence.
const LastOccurrence = -1

// Recurrence is the yearly schedule of a recurring transition. It is
// sufficient to compute the transition's calendar day for an arbitrary year.
type Recurrence struct {
	// Form selects between the floating-day and fixed-date interpretation.
	Form RecurrenceForm `yaml:"form"`
	// Month is the month the transition occurs in.
	Month time.Month `yaml:"month"`
	// Occurrence selects the instance of Weekday within the month for the
	// FloatingDay form: 1 through 4, or LastOccurrence for the last one.
	Occurrence int `yaml:"occurrence,omitempty"`
	// Weekday is the day of the week for the FloatingDay form.
	Weekday time.Weekday `yaml:"weekday,omitempty"`
	// Day is the day of the month for the FixedDate form.
	Day int `yaml:"day,omitempty"`
	// TimeOffset is the wall-clock time of day of the transition,
	// relative to 00:00.
	TimeOffset time.Duration `yaml:"time_offset"`
}

// TransitionTime converts the recurrence into the host adjustment-rule
// transition-time descriptor. It is a pure function of the recurrence.
func (r Recurrence) TransitionTime() adjrule.TransitionTime {
	switch r.Form {
	case FixedDate:
		return adjrule.NewFixedDate(r.Month, r.Day, r.TimeOffset)
	case FloatingDay:
		week := r.Occurrence
		if week == LastOccurrence {
			week = adjrule.LastWeek
		}
		return adjrule.NewFloating(r.Month, week, r.Weekday, r.TimeOffset)
	}
	panic(fmt.Errorf("tzdef: invalid RecurrenceForm: %d", r.Form))
}

// recurrenceFromTransitionTime is the inverse of TransitionTime, used when
// synthesizing a group from a host adjustment rule.
func recurrenceFromTransitionTime(t adjrule.TransitionTime) Recurrence {
	if t.IsFixedDate {
		return Recurrence{Form: FixedDate, Month: t.Month, Day: t.Day, TimeOffset: t.TimeOfDay}
	}
	occ := t.Week
	if occ == adjrule.LastWeek {
		occ = LastOccurrence
	}
	return Recurrence{Form: FloatingDay, Month: t.Month, Occurrence: occ, Weekday: t.Weekday, TimeOffset: t.TimeOfDay}
}

// DayOfMonth resolves the recurrence to a concrete day of its month in the
// given year. Fixed dates are clamped to the month's length.
func (r Recurrence) DayOfMonth(year int) int {
	switch r.Form {
	case FixedDate:
		if max := datemath.DaysInMonth(year, r.Month); r.Day > max {
			return max
		}
		return r.Day
	case FloatingDay:
		if r.Occurrence == LastOccurrence {
			return datemath.LastWeekday(year, r.Month, r.Weekday)
		}
		return datemath.NthWeekday(year, r.Month, r.Weekday, r.Occurrence)
	}
	panic(fmt.Errorf("tzdef: invalid RecurrenceForm: %d", r.Form))
}

// Transition is one switch of the observed period. Its target is a period
// owned by the definition's registry, resolved by identifier at load time
// and never nil in a loaded transition.
type Transition struct {
	// Kind tags the transition as absolute or recurring.
	Kind TransitionKind `yaml:"kind"`
	// Target is the period the transition switches to.
	Target *Period `yaml:"target"`
	// Rule is the yearly schedule. It is only meaningful for RecurringKind.
	Rule Recurrence `yaml:"rule,omitempty"`
}
