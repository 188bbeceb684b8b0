package strategy

import (
	"errors"
	"testing"

	"github.com/catalystlab/catalyst/internal/core"
)

func TestDefinition_Validate(t *testing.T) {
	d := &Definition{Name: "test", Direction: DirectionLong}
	if err := d.Validate(); err != nil {
		t.Errorf("valid definition rejected: %v", err)
	}

	d = &Definition{Direction: DirectionLong}
	if err := d.Validate(); !errors.Is(err, core.ErrStrategyInvalid) {
		t.Errorf("expected ErrStrategyInvalid for missing name, got %v", err)
	}

	d = &Definition{Name: "test", Direction: "sideways"}
	if err := d.Validate(); !errors.Is(err, core.ErrStrategyInvalid) {
		t.Errorf("expected ErrStrategyInvalid for bad direction, got %v", err)
	}
}

func TestDefinition_UniverseFilters(t *testing.T) {
	d := &Definition{
		Name:              "filtered",
		AllowedEventTypes: []core.EventType{core.EventFDAAction},
		AllowedSectors:    []string{"biotech"},
		ExcludedTickers:   []string{"BAD"},
	}

	ev := testEvent()
	ev.EventType = core.EventFDAAction
	ev.Sector = "biotech"
	if !d.CheckEntry(ev) {
		t.Error("matching event must pass filters")
	}

	wrongType := ev
	wrongType.EventType = core.EventEarnings
	if d.CheckEntry(wrongType) {
		t.Error("disallowed event type must be rejected")
	}

	wrongSector := ev
	wrongSector.Sector = "tech"
	if d.CheckEntry(wrongSector) {
		t.Error("disallowed sector must be rejected")
	}

	excluded := ev
	excluded.Ticker = "BAD"
	if d.CheckEntry(excluded) {
		t.Error("excluded ticker must be rejected")
	}
}

func TestCheckEntry_GroupLogic(t *testing.T) {
	pass := ConditionGroup{Conditions: []SignalCondition{
		{Signal: "impact_score", Operator: OpGT, Value: 60.0},
	}}
	fail := ConditionGroup{Conditions: []SignalCondition{
		{Signal: "impact_score", Operator: OpGT, Value: 90.0},
	}}

	andStrat := &Definition{Name: "and", EntryLogic: LogicAnd, EntryConditions: []ConditionGroup{pass, fail}}
	if andStrat.CheckEntry(testEvent()) {
		t.Error("AND across groups with failing group must reject")
	}

	orStrat := &Definition{Name: "or", EntryLogic: LogicOr, EntryConditions: []ConditionGroup{fail, pass}}
	if !orStrat.CheckEntry(testEvent()) {
		t.Error("OR across groups with passing group must accept")
	}

	open := &Definition{Name: "open"}
	if !open.CheckEntry(testEvent()) {
		t.Error("no conditions must permit entry")
	}
}

func TestEntryDirection(t *testing.T) {
	ev := testEvent()

	long := &Definition{Name: "l", Direction: DirectionLong}
	if got := long.EntryDirection(ev); got != DirectionLong {
		t.Errorf("long strategy must go long, got %s", got)
	}

	short := &Definition{Name: "s", Direction: DirectionShort}
	if got := short.EntryDirection(ev); got != DirectionShort {
		t.Errorf("short strategy must go short, got %s", got)
	}

	both := &Definition{Name: "b", Direction: DirectionBoth}
	if got := both.EntryDirection(ev); got != DirectionLong {
		t.Errorf("both with positive event must go long, got %s", got)
	}

	bearish := ev
	bearish.BearishSignal = true
	if got := both.EntryDirection(bearish); got != DirectionShort {
		t.Errorf("both with bearish event must go short, got %s", got)
	}

	negative := ev
	negative.Direction = core.DirectionNegative
	if got := both.EntryDirection(negative); got != DirectionShort {
		t.Errorf("both with negative event must go short, got %s", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	orig := HighImpactMomentum()
	raw, err := orig.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Name != orig.Name {
		t.Errorf("name mismatch: %s != %s", parsed.Name, orig.Name)
	}
	if len(parsed.EntryConditions) != len(orig.EntryConditions) {
		t.Errorf("condition groups lost in round trip")
	}
	if parsed.Exit.StopLossPct == nil || *parsed.Exit.StopLossPct != *orig.Exit.StopLossPct {
		t.Error("exit thresholds lost in round trip")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{`)); !errors.Is(err, core.ErrStrategyInvalid) {
		t.Errorf("expected ErrStrategyInvalid for bad JSON, got %v", err)
	}
	if _, err := Parse([]byte(`{"direction":"long"}`)); !errors.Is(err, core.ErrStrategyInvalid) {
		t.Errorf("expected ErrStrategyInvalid for missing name, got %v", err)
	}
}
