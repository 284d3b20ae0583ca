package tzdef

import (
	"fmt"
	"sort"
	"time"

	"github.com/nholt/go-tzdef/adjrule"
	"github.com/nholt/go-tzdef/internal/unixtime"
)

// TransitionsGroup is the set of one or two transitions describing a year's
// standard/daylight switching behavior. A group is built once, by decoding
// wire data or by synthesis from an adjustment rule, and is read-only
// afterwards except for the idempotent classification cache.
//
// A valid group holds either a single absolute transition (no daylight
// saving) or a pair of recurring transitions (one into daylight time, one
// back to standard time). Validate enforces this; decoding alone does not.
type TransitionsGroup struct {
	// ID is the group's wire identifier.
	ID string `yaml:"id"`
	// Transitions is the group's transition list, in wire order.
	Transitions []Transition `yaml:"transitions"`

	// Classification cache, set by classify.
	toStandard *Transition
	toDaylight *Transition
}

// Validate checks the group's structural invariants: transition count is
// one or two, a single transition is absolute, a pair contains no absolute
// transition, and every transition has a target period. It stops at the
// first violation and reports it wrapped in ErrInvalidDefinition.
// Validate does not mutate the group.
func (g *TransitionsGroup) Validate() error {
	if len(g.Transitions) < 1 || len(g.Transitions) > 2 {
		return fmt.Errorf("group %q: %d transitions, want 1 or 2: %w", g.ID, len(g.Transitions), ErrInvalidDefinition)
	}
	if len(g.Transitions) == 1 && g.Transitions[0].Kind != AbsoluteKind {
		return fmt.Errorf("group %q: single transition must be absolute, got %v: %w", g.ID, g.Transitions[0].Kind, ErrInvalidDefinition)
	}
	if len(g.Transitions) == 2 {
		for i, t := range g.Transitions {
			if t.Kind == AbsoluteKind {
				return fmt.Errorf("group %q: transition %d: absolute transition in a pair: %w", g.ID, i, ErrInvalidDefinition)
			}
		}
	}
	for i, t := range g.Transitions {
		if t.Target == nil {
			return fmt.Errorf("group %q: transition %d: no target period: %w", g.ID, i, ErrInvalidDefinition)
		}
	}
	return nil
}

// classify determines which transition leads to the standard period and
// which, if any, leads to the daylight period. A transition whose target is
// marked standard becomes the standard transition, as does the sole
// transition of a single-transition group; any other becomes the daylight
// transition. classify is lazy and idempotent: once a standard transition
// has been found, repeated calls are no-ops.
func (g *TransitionsGroup) classify() error {
	if g.toStandard != nil {
		return nil
	}
	for i := range g.Transitions {
		t := &g.Transitions[i]
		if t.Target == nil {
			return fmt.Errorf("group %q: transition %d: no target period: %w", g.ID, i, ErrInvalidDefinition)
		}
		if t.Target.IsStandard() || len(g.Transitions) == 1 {
			g.toStandard = t
		} else {
			g.toDaylight = t
		}
	}
	if g.toStandard == nil {
		return fmt.Errorf("group %q: no transition to standard time: %w", g.ID, ErrInvalidDefinition)
	}
	return nil
}

// SupportsDaylight reports whether the group describes daylight saving.
// This is a structural check on the transition count; it does not trigger
// classification.
func (g *TransitionsGroup) SupportsDaylight() bool {
	return len(g.Transitions) == 2
}

// DaylightDelta returns the amount the clock moves forward while daylight
// time is in effect, or zero for a group without daylight saving.
//
// The value is standard bias minus daylight bias. With the wire's inverted
// bias sign this subtraction order already yields the host convention's
// positive-forward delta; it must not be negated again.
func (g *TransitionsGroup) DaylightDelta() (time.Duration, error) {
	if !g.SupportsDaylight() {
		return 0, nil
	}
	if err := g.classify(); err != nil {
		return 0, err
	}
	if g.toDaylight == nil {
		return 0, fmt.Errorf("group %q: no transition to daylight time: %w", g.ID, ErrInvalidDefinition)
	}
	return g.toStandard.Target.Bias - g.toDaylight.Target.Bias, nil
}

// CreationParams are the values a host calendar API needs to create a time
// zone from a group: the base offset in host convention and the display
// names of the two periods.
type CreationParams struct {
	// BaseOffsetToUTC is the standard period's offset from UTC in the
	// conventional sign (positive means ahead of UTC).
	BaseOffsetToUTC time.Duration `yaml:"base_offset_to_utc"`
	// StandardName is the standard period's display name.
	StandardName string `yaml:"standard_name"`
	// DaylightName is the daylight period's display name. It is empty for
	// groups without daylight saving.
	DaylightName string `yaml:"daylight_name,omitempty"`
}

// CreationParams derives the group's creation parameters, classifying the
// group first. The standard period's bias is negated to translate the wire
// sign convention into the host's UTC-offset convention.
func (g *TransitionsGroup) CreationParams() (CreationParams, error) {
	if err := g.classify(); err != nil {
		return CreationParams{}, err
	}
	p := CreationParams{
		BaseOffsetToUTC: -g.toStandard.Target.Bias,
		StandardName:    g.toStandard.Target.Name,
	}
	if g.toDaylight != nil {
		p.DaylightName = g.toDaylight.Target.Name
	}
	return p, nil
}

// AdjustmentRule builds the host adjustment rule covering the span from
// start to end. A single-transition group cannot express a daylight window,
// so it yields no rule (nil, nil) and the caller must treat the base offset
// as constant for the span. Start and end are truncated to calendar-date
// granularity before use: adjustment windows operate on whole days.
func (g *TransitionsGroup) AdjustmentRule(start, end time.Time) (*adjrule.Rule, error) {
	if len(g.Transitions) == 1 {
		return nil, nil
	}
	if err := g.classify(); err != nil {
		return nil, err
	}
	if g.toDaylight == nil {
		return nil, fmt.Errorf("group %q: no transition to daylight time: %w", g.ID, ErrInvalidDefinition)
	}
	for _, t := range []*Transition{g.toDaylight, g.toStandard} {
		switch t.Kind {
		case RecurringKind:
		case AbsoluteKind:
			return nil, fmt.Errorf("group %q: absolute transition in a pair: %w", g.ID, ErrInvalidDefinition)
		default:
			panic(fmt.Errorf("tzdef: invalid TransitionKind: %d", t.Kind))
		}
	}
	delta, err := g.DaylightDelta()
	if err != nil {
		return nil, err
	}
	r, err := adjrule.New(
		truncateToDate(start),
		truncateToDate(end),
		delta,
		g.toDaylight.Rule.TransitionTime(),
		g.toStandard.Rule.TransitionTime(),
	)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g.ID, err)
	}
	return &r, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Occurrence is one concrete transition instant of a group within a year.
type Occurrence struct {
	// At is the transition instant as Unix seconds (UTC).
	At int64 `yaml:"at"`
	// To is the period in effect after the instant.
	To *Period `yaml:"to"`
}

// Occurrences resolves the group's recurring transitions to their concrete
// instants in the given year, sorted by time. The wall-clock time of each
// transition is translated to UTC using the bias of the period in effect
// just before it. A single-transition group has no yearly occurrences and
// yields nil.
func (g *TransitionsGroup) Occurrences(year int) ([]Occurrence, error) {
	if !g.SupportsDaylight() {
		return nil, nil
	}
	if err := g.classify(); err != nil {
		return nil, err
	}
	if g.toDaylight == nil {
		return nil, fmt.Errorf("group %q: no transition to daylight time: %w", g.ID, ErrInvalidDefinition)
	}

	// Before the switch into daylight time the standard period is in
	// effect, and vice versa.
	occs := []Occurrence{
		occurrenceIn(year, g.toDaylight, g.toStandard.Target),
		occurrenceIn(year, g.toStandard, g.toDaylight.Target),
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].At < occs[j].At })
	return occs, nil
}

func occurrenceIn(year int, t *Transition, before *Period) Occurrence {
	day := t.Rule.DayOfMonth(year)
	local := unixtime.FromDate(year, t.Rule.Month, day, t.Rule.TimeOffset)
	// Wire bias is positive behind UTC, so UTC = local wall time + bias.
	return Occurrence{
		At: local + int64(before.Bias/time.Second),
		To: t.Target,
	}
}
