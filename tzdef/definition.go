package tzdef

import (
	"errors"
	"fmt"
	"time"

	"github.com/nholt/go-tzdef/adjrule"
)

// Definition is an aggregate time zone definition: the registry of periods
// keyed by identifier and the transitions groups that reference them.
type Definition struct {
	// ID is the definition's wire identifier.
	ID string `yaml:"id,omitempty"`
	// Name is the definition's display name.
	Name string `yaml:"name,omitempty"`
	// Periods holds the registered periods in registration order.
	Periods []*Period `yaml:"periods"`
	// Groups holds the transitions groups in wire order.
	Groups []*TransitionsGroup `yaml:"groups"`

	byID map[string]*Period
}

// LookupPeriod resolves a period identifier against the registry.
// It returns ErrPeriodNotFound if the identifier is absent.
func (d *Definition) LookupPeriod(id string) (*Period, error) {
	p, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("period %q: %w", id, ErrPeriodNotFound)
	}
	if p == nil {
		panic(fmt.Errorf("tzdef: period registry holds nil period for %q", id))
	}
	return p, nil
}

// AddPeriod registers a period, replacing any period with the same ID, and
// returns the registered instance.
func (d *Definition) AddPeriod(p Period) *Period {
	if d.byID == nil {
		d.byID = make(map[string]*Period)
	}
	if old, ok := d.byID[p.ID]; ok {
		*old = p
		return old
	}
	reg := &p
	d.byID[p.ID] = reg
	d.Periods = append(d.Periods, reg)
	return reg
}

// Validate validates every group of the definition. Unlike the fail-first
// check within a group, faults across groups are collected and joined so a
// rejected definition reports every offending group.
func (d *Definition) Validate() error {
	var errs error
	for _, g := range d.Groups {
		errs = errors.Join(errs, g.Validate())
	}
	return errs
}

// NewGroupFromRule synthesizes a transitions group from a host adjustment
// rule, registering the periods it creates. The synthesized period IDs are
// suffixed with the rule's start year so that rules for different years can
// coexist in one registry.
//
// A rule without daylight saving yields a single absolute transition to a
// clone of the standard template. A rule with daylight saving yields a
// daylight period whose bias is the template's bias minus the daylight
// delta, a clone of the standard template, and two recurring transitions
// appended in the fixed order [daylight, standard]. The order is stable so
// that synthesized groups serialize reproducibly.
func (d *Definition) NewGroupFromRule(id string, r adjrule.Rule, standardTemplate Period) (*TransitionsGroup, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("group %q: %w", id, err)
	}

	year := r.DateStart.Year()
	g := &TransitionsGroup{ID: id}

	if !r.SupportsDaylight() {
		std := d.AddPeriod(Period{
			ID:   fmt.Sprintf("%s/%d", standardTemplate.ID, year),
			Name: standardTemplate.Name,
			Bias: standardTemplate.Bias,
		})
		g.Transitions = []Transition{
			{Kind: AbsoluteKind, Target: std},
		}
	} else {
		dlt := d.AddPeriod(Period{
			ID:   fmt.Sprintf("%s/%d", DaylightPeriodName, year),
			Name: DaylightPeriodName,
			Bias: standardTemplate.Bias - r.DaylightDelta,
		})
		std := d.AddPeriod(Period{
			ID:   fmt.Sprintf("%s/%d", standardTemplate.ID, year),
			Name: standardTemplate.Name,
			Bias: standardTemplate.Bias,
		})
		g.Transitions = []Transition{
			{Kind: RecurringKind, Target: dlt, Rule: recurrenceFromTransitionTime(r.DaylightTransitionStart)},
			{Kind: RecurringKind, Target: std, Rule: recurrenceFromTransitionTime(r.DaylightTransitionEnd)},
		}
	}

	d.Groups = append(d.Groups, g)
	return g, nil
}

// AdjustmentRules builds one adjustment rule per group that supports
// daylight saving, covering year spans supplied by the caller through
// spanFor, which maps a group to the start and end dates of the span the
// group is responsible for. Groups without daylight saving contribute no
// rule.
func (d *Definition) AdjustmentRules(spanFor func(*TransitionsGroup) (start, end time.Time)) ([]adjrule.Rule, error) {
	var rules []adjrule.Rule
	for _, g := range d.Groups {
		start, end := spanFor(g)
		r, err := g.AdjustmentRule(start, end)
		if err != nil {
			return nil, err
		}
		if r != nil {
			rules = append(rules, *r)
		}
	}
	return rules, nil
}
