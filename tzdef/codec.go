package tzdef

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Wire element and attribute names.
const (
	elemDefinition    = "TimeZoneDefinition"
	elemPeriods       = "Periods"
	elemPeriod        = "Period"
	elemGroups        = "TransitionsGroups"
	elemGroup         = "TransitionsGroup"
	elemTransition    = "Transition"
	elemRecurringDay  = "RecurringDayTransition"
	elemRecurringDate = "RecurringDateTransition"

	attrID         = "Id"
	attrName       = "Name"
	attrBias       = "Bias"
	attrTo         = "To"
	attrMonth      = "Month"
	attrOccurrence = "Occurrence"
	attrDayOfWeek  = "DayOfWeek"
	attrDay        = "Day"
	attrTimeOffset = "TimeOffset"
)

// parseError is an error that occurred while decoding wire data.
// It records the element the decoder was positioned at.
type parseError struct {
	element string
	err     error
}

// Error returns a string representation of the parse error, implementing
// the error interface.
func (e *parseError) Error() string {
	return fmt.Sprintf("element <%s>: %v", e.element, e.err)
}

func (e *parseError) Unwrap() error {
	return e.err
}

// Decode reads a complete time zone definition document from r. Periods are
// registered before the transitions groups that reference them; a group
// transition naming an unregistered period fails the whole decode with
// ErrPeriodNotFound. Decode does not validate group structure; callers
// invoke Definition.Validate once after a successful decode before trusting
// the result.
func Decode(r io.Reader) (*Definition, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("reading root element: %w", err)
	}
	if root.Name.Local != elemDefinition {
		return nil, &parseError{root.Name.Local, fmt.Errorf("expected <%s>", elemDefinition)}
	}

	var d Definition
	d.ID, _ = attr(root, attrID)
	d.Name, _ = attr(root, attrName)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <%s>: %w", elemDefinition, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemPeriods:
				if err := decodePeriods(dec, &d); err != nil {
					return nil, err
				}
			case elemGroups:
				if err := decodeGroups(dec, &d); err != nil {
					return nil, err
				}
			default:
				return nil, &parseError{t.Name.Local, fmt.Errorf("unexpected element in <%s>", elemDefinition)}
			}
		case xml.EndElement:
			return &d, nil
		}
	}
}

func decodePeriods(dec *xml.Decoder, d *Definition) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading <%s>: %w", elemPeriods, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemPeriod {
				return &parseError{t.Name.Local, fmt.Errorf("unexpected element in <%s>", elemPeriods)}
			}
			p, err := parsePeriod(t)
			if err != nil {
				return &parseError{elemPeriod, err}
			}
			d.AddPeriod(p)
			if err := dec.Skip(); err != nil {
				return fmt.Errorf("reading <%s>: %w", elemPeriod, err)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parsePeriod(e xml.StartElement) (Period, error) {
	var (
		p    Period
		errs error
	)
	var ok bool
	if p.ID, ok = attr(e, attrID); !ok {
		errs = errors.Join(errs, fmt.Errorf("%s: missing attribute", attrID))
	}
	if p.Name, ok = attr(e, attrName); !ok {
		errs = errors.Join(errs, fmt.Errorf("%s: missing attribute", attrName))
	}
	if s, ok := attr(e, attrBias); !ok {
		errs = errors.Join(errs, fmt.Errorf("%s: missing attribute", attrBias))
	} else if bias, err := parseOffset(s); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%s %q: %w", attrBias, s, err))
	} else {
		p.Bias = bias
	}
	return p, errs
}

func decodeGroups(dec *xml.Decoder, d *Definition) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading <%s>: %w", elemGroups, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemGroup {
				return &parseError{t.Name.Local, fmt.Errorf("unexpected element in <%s>", elemGroups)}
			}
			g, err := decodeGroup(dec, t, d)
			if err != nil {
				return err
			}
			d.Groups = append(d.Groups, g)
		case xml.EndElement:
			return nil
		}
	}
}

// decodeGroup reads one transitions group: the Id attribute, then child
// transition elements in document order until the closing element. The
// transition kind is determined by the child's element name. Each target
// period is resolved against the definition's registry as it is read.
func decodeGroup(dec *xml.Decoder, start xml.StartElement, d *Definition) (*TransitionsGroup, error) {
	var g TransitionsGroup
	g.ID, _ = attr(start, attrID)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <%s>: %w", elemGroup, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var (
				tr  Transition
				err error
			)
			switch t.Name.Local {
			case elemTransition:
				tr, err = parseAbsoluteTransition(t, d)
			case elemRecurringDay:
				tr, err = parseRecurringDayTransition(t, d)
			case elemRecurringDate:
				tr, err = parseRecurringDateTransition(t, d)
			default:
				return nil, &parseError{t.Name.Local, fmt.Errorf("unexpected element in <%s>", elemGroup)}
			}
			if err != nil {
				return nil, &parseError{t.Name.Local, fmt.Errorf("group %q: %w", g.ID, err)}
			}
			if tr.Target == nil {
				panic(fmt.Errorf("tzdef: transition loaded without target period in group %q", g.ID))
			}
			g.Transitions = append(g.Transitions, tr)
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("reading <%s>: %w", t.Name.Local, err)
			}
		case xml.EndElement:
			return &g, nil
		}
	}
}

// resolveTarget resolves the To attribute against the period registry.
func resolveTarget(e xml.StartElement, d *Definition) (*Period, error) {
	id, ok := attr(e, attrTo)
	if !ok {
		return nil, fmt.Errorf("%s: missing attribute", attrTo)
	}
	p, err := d.LookupPeriod(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attrTo, err)
	}
	return p, nil
}

func parseAbsoluteTransition(e xml.StartElement, d *Definition) (Transition, error) {
	target, err := resolveTarget(e, d)
	if err != nil {
		return Transition{}, err
	}
	return Transition{Kind: AbsoluteKind, Target: target}, nil
}

func parseRecurringDayTransition(e xml.StartElement, d *Definition) (Transition, error) {
	target, err := resolveTarget(e, d)
	if err != nil {
		return Transition{}, err
	}
	rule := Recurrence{Form: FloatingDay}
	var errs error
	if v, err := requireAttr(e, attrMonth, parseMonth); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.Month = v
	}
	if v, err := requireAttr(e, attrOccurrence, parseOccurrence); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.Occurrence = v
	}
	if v, err := requireAttr(e, attrDayOfWeek, parseWeekday); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.Weekday = v
	}
	if v, err := requireAttr(e, attrTimeOffset, parseOffset); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.TimeOffset = v
	}
	if errs != nil {
		return Transition{}, errs
	}
	return Transition{Kind: RecurringKind, Target: target, Rule: rule}, nil
}

func parseRecurringDateTransition(e xml.StartElement, d *Definition) (Transition, error) {
	target, err := resolveTarget(e, d)
	if err != nil {
		return Transition{}, err
	}
	rule := Recurrence{Form: FixedDate}
	var errs error
	if v, err := requireAttr(e, attrMonth, parseMonth); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.Month = v
	}
	if v, err := requireAttr(e, attrDay, parseDayOfMonth); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.Day = v
	}
	if v, err := requireAttr(e, attrTimeOffset, parseOffset); err != nil {
		errs = errors.Join(errs, err)
	} else {
		rule.TimeOffset = v
	}
	if errs != nil {
		return Transition{}, errs
	}
	return Transition{Kind: RecurringKind, Target: target, Rule: rule}, nil
}

func parseDayOfMonth(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 31 {
		return 0, fmt.Errorf("day %d: out of range", n)
	}
	return n, nil
}

// requireAttr looks up a required attribute and parses it with parse,
// wrapping any fault with the attribute name and raw value.
func requireAttr[T any](e xml.StartElement, name string, parse func(string) (T, error)) (T, error) {
	var zero T
	s, ok := attr(e, name)
	if !ok {
		return zero, fmt.Errorf("%s: missing attribute", name)
	}
	v, err := parse(s)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", name, s, err)
	}
	return v, nil
}

func attr(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// nextStart advances the decoder to the next start element, skipping
// character data, comments, and processing instructions.
func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// Encode writes the definition back to wire format. Periods are written in
// registration order and transitions in stored order, so a decoded
// definition re-encodes reproducibly.
func (d *Definition) Encode(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")

	root := startElement(elemDefinition)
	if d.ID != "" {
		root.Attr = append(root.Attr, mkAttr(attrID, d.ID))
	}
	if d.Name != "" {
		root.Attr = append(root.Attr, mkAttr(attrName, d.Name))
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	periods := startElement(elemPeriods)
	if err := enc.EncodeToken(periods); err != nil {
		return err
	}
	for _, p := range d.Periods {
		e := startElement(elemPeriod,
			mkAttr(attrID, p.ID),
			mkAttr(attrName, p.Name),
			mkAttr(attrBias, formatOffset(p.Bias)),
		)
		if err := encodeEmpty(enc, e); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(periods.End()); err != nil {
		return err
	}

	groups := startElement(elemGroups)
	if err := enc.EncodeToken(groups); err != nil {
		return err
	}
	for _, g := range d.Groups {
		if err := g.encode(enc); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(groups.End()); err != nil {
		return err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// encode writes the group's Id attribute and each transition in stored
// order. The element name of a transition depends on its kind and, for
// recurring transitions, on the form of its recurrence.
func (g *TransitionsGroup) encode(enc *xml.Encoder) error {
	ge := startElement(elemGroup, mkAttr(attrID, g.ID))
	if err := enc.EncodeToken(ge); err != nil {
		return err
	}
	for i, t := range g.Transitions {
		if t.Target == nil {
			return fmt.Errorf("group %q: transition %d: no target period: %w", g.ID, i, ErrInvalidDefinition)
		}
		var e xml.StartElement
		switch t.Kind {
		case AbsoluteKind:
			e = startElement(elemTransition, mkAttr(attrTo, t.Target.ID))
		case RecurringKind:
			switch t.Rule.Form {
			case FloatingDay:
				e = startElement(elemRecurringDay,
					mkAttr(attrTo, t.Target.ID),
					mkAttr(attrMonth, formatMonth(t.Rule.Month)),
					mkAttr(attrOccurrence, strconv.Itoa(t.Rule.Occurrence)),
					mkAttr(attrDayOfWeek, formatWeekday(t.Rule.Weekday)),
					mkAttr(attrTimeOffset, formatOffset(t.Rule.TimeOffset)),
				)
			case FixedDate:
				e = startElement(elemRecurringDate,
					mkAttr(attrTo, t.Target.ID),
					mkAttr(attrMonth, formatMonth(t.Rule.Month)),
					mkAttr(attrDay, strconv.Itoa(t.Rule.Day)),
					mkAttr(attrTimeOffset, formatOffset(t.Rule.TimeOffset)),
				)
			default:
				panic(fmt.Errorf("tzdef: invalid RecurrenceForm: %d", t.Rule.Form))
			}
		default:
			panic(fmt.Errorf("tzdef: invalid TransitionKind: %d", t.Kind))
		}
		if err := encodeEmpty(enc, e); err != nil {
			return err
		}
	}
	return enc.EncodeToken(ge.End())
}

func startElement(name string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
}

func mkAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func encodeEmpty(enc *xml.Encoder, e xml.StartElement) error {
	if err := enc.EncodeToken(e); err != nil {
		return err
	}
	return enc.EncodeToken(e.End())
}
