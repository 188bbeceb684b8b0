package strategy

import (
	"encoding/json"

	"github.com/catalystlab/catalyst/internal/core"
)

// Presets returns the built-in strategy catalog keyed by name.
func Presets() map[string]*Definition {
	return map[string]*Definition{
		"high_impact_momentum": HighImpactMomentum(),
		"fda_catalyst":         FDACatalyst(),
		"bearish_short":        BearishShort(),
	}
}

// Preset looks up a built-in strategy by name.
func Preset(name string) (*Definition, bool) {
	d, ok := Presets()[name]
	return d, ok
}

// HighImpactMomentum enters on strongly scored positive events with
// high model confidence and rides momentum with a trailing stop.
func HighImpactMomentum() *Definition {
	return &Definition{
		Name:        "high_impact_momentum",
		Description: "Long high-scoring positive events with confident ML backing",
		Version:     "1",
		Direction:   DirectionLong,
		EntryLogic:  LogicAnd,
		EntryConditions: []ConditionGroup{
			{
				Logic: LogicAnd,
				Conditions: []SignalCondition{
					{Signal: string(core.SignalMLAdjustedScore), Operator: OpGTE, Value: 60.0},
					{Signal: string(core.SignalDirection), Operator: OpEQ, Value: "positive"},
					{Signal: string(core.SignalMLConfidence), Operator: OpGT, Value: 0.6},
				},
			},
		},
		Exit: ExitCondition{
			StopLossPct:     core.Float(8),
			TakeProfitPct:   core.Float(20),
			MaxHoldingDays:  intPtr(20),
			TrailingStopPct: core.Float(6),
		},
		Position: PositionConfig{
			Method:             SizeConfidenceScaled,
			PortfolioPercent:   0.1,
			MaxPositionPercent: 0.15,
			MinPositionSize:    500,
			MaxPositions:       10,
		},
		MinDaysBetweenTrades: 2,
	}
}

// FDACatalyst trades FDA actions only, exiting fast on adverse moves.
func FDACatalyst() *Definition {
	return &Definition{
		Name:              "fda_catalyst",
		Description:       "Event-window trades around FDA actions",
		Version:           "1",
		Direction:         DirectionBoth,
		EntryLogic:        LogicAnd,
		AllowedEventTypes: []core.EventType{core.EventFDAAction},
		EntryConditions: []ConditionGroup{
			{
				Logic: LogicAnd,
				Conditions: []SignalCondition{
					{Signal: string(core.SignalImpactScore), Operator: OpGTE, Value: 50.0},
					{Signal: string(core.SignalConfidence), Operator: OpGT, Value: 0.5},
				},
			},
		},
		Exit: ExitCondition{
			StopLossPct:    core.Float(12),
			TakeProfitPct:  core.Float(25),
			MaxHoldingDays: intPtr(5),
		},
		Position: PositionConfig{
			Method:             SizeFixedPercent,
			PortfolioPercent:   0.05,
			MaxPositionPercent: 0.1,
			MinPositionSize:    500,
			MaxPositions:       8,
		},
	}
}

// BearishShort shorts events flagged bearish by the hidden-bearish
// detector, covering on a forced-exit event or bearish reversal.
func BearishShort() *Definition {
	return &Definition{
		Name:        "bearish_short",
		Description: "Short events with strong bearish indicators",
		Version:     "1",
		Direction:   DirectionShort,
		EntryLogic:  LogicOr,
		EntryConditions: []ConditionGroup{
			{
				Logic: LogicAnd,
				Conditions: []SignalCondition{
					{Signal: string(core.SignalBearish), Operator: OpEQ, Value: true},
					{Signal: string(core.SignalBearishScore), Operator: OpGTE, Value: 60.0},
				},
			},
			{
				Logic: LogicAnd,
				Conditions: []SignalCondition{
					{Signal: string(core.SignalHiddenBearishProb), Operator: OpGT, Value: 0.7},
				},
			},
		},
		Exit: ExitCondition{
			StopLossPct:    core.Float(10),
			TakeProfitPct:  core.Float(15),
			MaxHoldingDays: intPtr(10),
			ExitOnEvent:    []core.EventType{core.EventMergerNews},
		},
		Position: PositionConfig{
			Method:             SizeKelly,
			MaxPositionPercent: 0.1,
			MinPositionSize:    500,
			MaxPositions:       6,
		},
		MinDaysBetweenTrades: 3,
	}
}

// FromStored assembles a Definition from the JSON blobs of a persisted
// user strategy. Each malformed blob degrades to a permissive default
// instead of failing the load; the degradations are returned so the
// caller can log them.
func FromStored(name, description string, entry, exit, sizing []byte) (*Definition, []error) {
	var degraded []error

	d := &Definition{
		Name:        name,
		Description: description,
		Direction:   DirectionLong,
		EntryLogic:  LogicAnd,
		Position:    DefaultPositionConfig(),
	}

	groups, logic, err := ParseEntryConditions(entry)
	if err != nil {
		degraded = append(degraded, err)
	} else {
		d.EntryConditions = groups
		d.EntryLogic = logic
	}

	if len(exit) > 0 {
		var x ExitCondition
		if err := json.Unmarshal(exit, &x); err != nil {
			degraded = append(degraded, core.WrapError(core.ErrStrategyInvalid, err))
		} else {
			d.Exit = x
		}
	}

	if len(sizing) > 0 {
		var p PositionConfig
		if err := json.Unmarshal(sizing, &p); err != nil {
			degraded = append(degraded, core.WrapError(core.ErrStrategyInvalid, err))
		} else {
			if p.MaxPositions <= 0 {
				p.MaxPositions = DefaultPositionConfig().MaxPositions
			}
			d.Position = p
		}
	}

	return d, degraded
}

func intPtr(v int) *int { return &v }
