package tzdef

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nholt/go-tzdef/adjrule"
)

func stdPeriod() *Period {
	return &Period{ID: "Std", Name: "Standard", Bias: 5 * time.Hour}
}

func dltPeriod() *Period {
	return &Period{ID: "Dlt", Name: "Daylight", Bias: 4 * time.Hour}
}

func absoluteTo(p *Period) Transition {
	return Transition{Kind: AbsoluteKind, Target: p}
}

func recurringTo(p *Period, month time.Month, occurrence int, weekday time.Weekday, at time.Duration) Transition {
	return Transition{
		Kind:   RecurringKind,
		Target: p,
		Rule:   Recurrence{Form: FloatingDay, Month: month, Occurrence: occurrence, Weekday: weekday, TimeOffset: at},
	}
}

// usGroup is a pair of recurring transitions modeled on the post-2007 US
// daylight rules: forward on the second Sunday of March, back on the first
// Sunday of November, both at 02:00 wall time.
func usGroup(std, dlt *Period) *TransitionsGroup {
	return &TransitionsGroup{
		ID: "1",
		Transitions: []Transition{
			recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
			recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
		},
	}
}

func TestValidate(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()

	tests := []struct {
		name    string
		group   *TransitionsGroup
		wantErr bool
	}{
		{
			name:    "no transitions",
			group:   &TransitionsGroup{ID: "0"},
			wantErr: true,
		},
		{
			name: "three transitions",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{
				recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
				recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
				recurringTo(std, time.December, 1, time.Sunday, 2*time.Hour),
			}},
			wantErr: true,
		},
		{
			name:  "single absolute",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(std)}},
		},
		{
			name: "single recurring",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{
				recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
			}},
			wantErr: true,
		},
		{
			name:  "recurring pair",
			group: usGroup(std, dlt),
		},
		{
			name: "absolute first in pair",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{
				absoluteTo(dlt),
				recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
			}},
			wantErr: true,
		},
		{
			name: "absolute second in pair",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{
				recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
				absoluteTo(std),
			}},
			wantErr: true,
		},
		{
			name:    "absolute without target",
			group:   &TransitionsGroup{ID: "0", Transitions: []Transition{{Kind: AbsoluteKind}}},
			wantErr: true,
		},
		{
			name: "recurring pair with missing target",
			group: &TransitionsGroup{ID: "0", Transitions: []Transition{
				recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
				recurringTo(nil, time.November, 1, time.Sunday, 2*time.Hour),
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.group.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("Validate() error = %v, want errors.Is(err, ErrInvalidDefinition)", err)
			}
		})
	}
}

func TestClassification_Determinism(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()

	forward := usGroup(std, dlt)
	reversed := &TransitionsGroup{
		ID: "1",
		Transitions: []Transition{
			recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
			recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
		},
	}

	for _, g := range []*TransitionsGroup{forward, reversed} {
		// Classification is idempotent: repeated calls agree.
		for i := 0; i < 3; i++ {
			params, err := g.CreationParams()
			if err != nil {
				t.Fatalf("CreationParams() error: %v", err)
			}
			if params.StandardName != "Standard" || params.DaylightName != "Daylight" {
				t.Errorf("classified (standard, daylight) = (%q, %q), want (Standard, Daylight)", params.StandardName, params.DaylightName)
			}
		}
	}
}

func TestClassification_SoleTransitionIsStandard(t *testing.T) {
	// The sole transition of a group is the standard transition even when
	// its target is not marked standard.
	p := &Period{ID: "P1", Name: "Custom Time", Bias: -time.Hour}
	g := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(p)}}

	params, err := g.CreationParams()
	if err != nil {
		t.Fatalf("CreationParams() error: %v", err)
	}
	want := CreationParams{BaseOffsetToUTC: time.Hour, StandardName: "Custom Time"}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("CreationParams() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassification_NoStandardTransition(t *testing.T) {
	dlt := dltPeriod()
	other := &Period{ID: "Dlt2", Name: "More Daylight", Bias: 3 * time.Hour}
	g := &TransitionsGroup{ID: "1", Transitions: []Transition{
		recurringTo(dlt, time.March, 2, time.Sunday, 2*time.Hour),
		recurringTo(other, time.November, 1, time.Sunday, 2*time.Hour),
	}}

	if _, err := g.CreationParams(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("CreationParams() error = %v, want errors.Is(err, ErrInvalidDefinition)", err)
	}
}

func TestCreationParams_SignConvention(t *testing.T) {
	// A wire bias of +5h means five hours behind UTC; the host convention
	// flips the sign.
	g := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(stdPeriod())}}

	params, err := g.CreationParams()
	if err != nil {
		t.Fatalf("CreationParams() error: %v", err)
	}
	if want := -5 * time.Hour; params.BaseOffsetToUTC != want {
		t.Errorf("BaseOffsetToUTC = %v, want %v", params.BaseOffsetToUTC, want)
	}
}

func TestDaylightDelta(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()

	delta, err := usGroup(std, dlt).DaylightDelta()
	if err != nil {
		t.Fatalf("DaylightDelta() error: %v", err)
	}
	if want := time.Hour; delta != want {
		t.Errorf("DaylightDelta() = %v, want %v", delta, want)
	}

	single := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(std)}}
	delta, err = single.DaylightDelta()
	if err != nil {
		t.Fatalf("DaylightDelta() error: %v", err)
	}
	if delta != 0 {
		t.Errorf("DaylightDelta() = %v for a single-transition group, want 0", delta)
	}
}

func TestDaylightDelta_NoDaylightTransition(t *testing.T) {
	// Both transitions of the pair target the standard period. Validate
	// accepts this (targets are not checked for distinctness), so every
	// transition classifies as standard and none as daylight.
	std := stdPeriod()
	g := &TransitionsGroup{ID: "1", Transitions: []Transition{
		recurringTo(std, time.March, 2, time.Sunday, 2*time.Hour),
		recurringTo(std, time.November, 1, time.Sunday, 2*time.Hour),
	}}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if _, err := g.DaylightDelta(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("DaylightDelta() error = %v, want errors.Is(err, ErrInvalidDefinition)", err)
	}
}

func TestSupportsDaylight(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()
	if g := usGroup(std, dlt); !g.SupportsDaylight() {
		t.Error("SupportsDaylight() = false for a recurring pair, want true")
	}
	single := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(std)}}
	if single.SupportsDaylight() {
		t.Error("SupportsDaylight() = true for a single transition, want false")
	}
}

func TestAdjustmentRule_SingleTransition(t *testing.T) {
	g := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(stdPeriod())}}

	r, err := g.AdjustmentRule(
		time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2008, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("AdjustmentRule() error: %v", err)
	}
	if r != nil {
		t.Errorf("AdjustmentRule() = %+v for a single-transition group, want nil", r)
	}
}

func TestAdjustmentRule_Pair(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()
	g := usGroup(std, dlt)

	// Deliberately pass datetimes with time-of-day components: adjustment
	// windows operate on whole days, so they must be truncated.
	got, err := g.AdjustmentRule(
		time.Date(2008, time.January, 1, 10, 30, 0, 0, time.UTC),
		time.Date(2008, time.December, 31, 23, 59, 59, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("AdjustmentRule() error: %v", err)
	}
	if got == nil {
		t.Fatal("AdjustmentRule() = nil, want rule")
	}

	want := adjrule.Rule{
		DateStart:               time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:                 time.Date(2008, time.December, 31, 0, 0, 0, 0, time.UTC),
		DaylightDelta:           time.Hour,
		DaylightTransitionStart: adjrule.NewFloating(time.March, 2, time.Sunday, 2*time.Hour),
		DaylightTransitionEnd:   adjrule.NewFloating(time.November, 1, time.Sunday, 2*time.Hour),
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("AdjustmentRule() mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjustmentRule_LastOccurrence(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()
	g := &TransitionsGroup{ID: "1", Transitions: []Transition{
		recurringTo(dlt, time.March, LastOccurrence, time.Sunday, time.Hour),
		recurringTo(std, time.October, LastOccurrence, time.Sunday, 2*time.Hour),
	}}

	got, err := g.AdjustmentRule(
		time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("AdjustmentRule() error: %v", err)
	}
	if got.DaylightTransitionStart.Week != adjrule.LastWeek {
		t.Errorf("DaylightTransitionStart.Week = %d, want %d", got.DaylightTransitionStart.Week, adjrule.LastWeek)
	}
	if got.DaylightTransitionEnd.Week != adjrule.LastWeek {
		t.Errorf("DaylightTransitionEnd.Week = %d, want %d", got.DaylightTransitionEnd.Week, adjrule.LastWeek)
	}
}

func TestOccurrences(t *testing.T) {
	std, dlt := stdPeriod(), dltPeriod()
	g := usGroup(std, dlt)

	got, err := g.Occurrences(2010)
	if err != nil {
		t.Fatalf("Occurrences() error: %v", err)
	}

	// 2010-03-14 02:00 standard time (+5h bias) = 07:00 UTC.
	// 2010-11-07 02:00 daylight time (+4h bias) = 06:00 UTC.
	want := []Occurrence{
		{At: 1268550000, To: dlt},
		{At: 1289109600, To: std},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Occurrences() mismatch (-want +got):\n%s", diff)
	}

	single := &TransitionsGroup{ID: "0", Transitions: []Transition{absoluteTo(std)}}
	occs, err := single.Occurrences(2010)
	if err != nil {
		t.Fatalf("Occurrences() error: %v", err)
	}
	if occs != nil {
		t.Errorf("Occurrences() = %v for a single-transition group, want nil", occs)
	}
}

// TestEndToEnd_NoDaylight follows a definition without daylight saving from
// wire data to creation parameters.
func TestEndToEnd_NoDaylight(t *testing.T) {
	input := strings.TrimSpace(`
<TimeZoneDefinition Id="Example/Constant" Name="Constant Time">
    <Periods>
        <Period Id="Standard" Name="Standard" Bias="5:00"/>
    </Periods>
    <TransitionsGroups>
        <TransitionsGroup Id="0">
            <Transition To="Standard"/>
        </TransitionsGroup>
    </TransitionsGroups>
</TimeZoneDefinition>
`)

	d, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	g := d.Groups[0]
	if g.SupportsDaylight() {
		t.Error("SupportsDaylight() = true, want false")
	}

	params, err := g.CreationParams()
	if err != nil {
		t.Fatalf("CreationParams() error: %v", err)
	}
	want := CreationParams{
		BaseOffsetToUTC: -300 * time.Minute,
		StandardName:    "Standard",
	}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("CreationParams() mismatch (-want +got):\n%s", diff)
	}

	r, err := g.AdjustmentRule(
		time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2008, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("AdjustmentRule() error: %v", err)
	}
	if r != nil {
		t.Errorf("AdjustmentRule() = %+v, want nil", r)
	}
}
