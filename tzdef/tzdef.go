// Package tzdef implements the wire format for time zone definitions: named
// offset periods plus the transitions groups that switch an observer between
// a standard period and an optional daylight period over the course of a
// year. It converts bidirectionally between that representation and the host
// calendar adjustment-rule model in package adjrule.
//
// Offsets on the wire are biases: a bias is the amount of time a period lags
// behind UTC, so a positive bias means the period is behind UTC and a
// negative bias means it is ahead. This is the opposite of the conventional
// UTC-offset sign used by host calendar APIs. The asymmetry is part of the
// format; conversion code in this package negates biases exactly once when
// crossing into host conventions and nowhere else.
package tzdef

import (
	"errors"
	"strings"
	"time"
)

// ErrPeriodNotFound is returned when a transition references a period
// identifier that is absent from the definition's period registry.
// It aborts the load of the enclosing definition.
var ErrPeriodNotFound = errors.New("period not found")

// ErrInvalidDefinition is returned for structurally invalid or unsupported
// time zone data: bad transition cardinality, a forbidden mix of transition
// kinds, or a group without a transition to standard time. Callers are
// expected to reject the entire definition rather than apply it partially.
var ErrInvalidDefinition = errors.New("invalid or unsupported time zone definition")

const (
	// StandardPeriodName marks a period as the standard-time period of its
	// definition. Classification of a transitions group relies on exactly
	// this display name, compared case-insensitively.
	StandardPeriodName = "Standard"
	// DaylightPeriodName is the display name given to daylight periods
	// synthesized from an adjustment rule.
	DaylightPeriodName = "Daylight"
)

// Period is one named offset a location observes for part of a year.
// A Period is immutable after construction; it is owned by the registry of
// its Definition and referenced (not owned) by transitions.
type Period struct {
	// ID uniquely identifies the period within its definition.
	ID string `yaml:"id"`
	// Name is the display name of the period.
	Name string `yaml:"name"`
	// Bias is the period's offset from UTC in the wire sign convention:
	// positive means behind UTC, negative means ahead.
	Bias time.Duration `yaml:"bias"`
}

// IsStandard reports whether the period is marked as a standard-time period.
func (p *Period) IsStandard() bool {
	return strings.EqualFold(p.Name, StandardPeriodName)
}
