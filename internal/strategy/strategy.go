package strategy

import (
	"encoding/json"

	"github.com/catalystlab/catalyst/internal/core"
)

// TradeDirection restricts which side of the market a strategy trades.
type TradeDirection string

const (
	DirectionLong  TradeDirection = "long"
	DirectionShort TradeDirection = "short"
	DirectionBoth  TradeDirection = "both"
)

// Definition is the declarative, immutable description of a trading
// strategy: entry condition groups, exit rules, sizing policy and
// universe filters. It is constructed once (from a preset or parsed
// user input) and consumed read-only by the simulator.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Direction   TradeDirection `json:"direction"`

	EntryLogic      LogicOp          `json:"entry_logic"`
	EntryConditions []ConditionGroup `json:"entry_conditions,omitempty"`
	Exit            ExitCondition    `json:"exit_conditions"`
	Position        PositionConfig   `json:"position_sizing"`

	AllowedEventTypes []core.EventType `json:"allowed_event_types,omitempty"`
	AllowedSectors    []string         `json:"allowed_sectors,omitempty"`
	ExcludedTickers   []string         `json:"excluded_tickers,omitempty"`

	MinDaysBetweenTrades int  `json:"min_days_between_trades,omitempty"`
	AllowPyramiding      bool `json:"allow_pyramiding,omitempty"`
}

// Validate checks the definition for structural errors.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return core.WrapError(core.ErrStrategyInvalid, errMissingName)
	}
	switch d.Direction {
	case DirectionLong, DirectionShort, DirectionBoth, "":
	default:
		return core.WrapError(core.ErrStrategyInvalid, errBadDirection)
	}
	return nil
}

var (
	errMissingName  = &core.Error{Code: "STRATEGY_INVALID", Message: "strategy name required"}
	errBadDirection = &core.Error{Code: "STRATEGY_INVALID", Message: "direction must be long, short or both"}
)

// AllowsEvent applies the universe filters: event-type allow-list,
// sector allow-list and ticker deny-list. Filters reject before any
// signal condition is evaluated.
func (d *Definition) AllowsEvent(ev core.EventData) bool {
	if len(d.AllowedEventTypes) > 0 && !containsEventType(d.AllowedEventTypes, ev.EventType) {
		return false
	}
	if len(d.AllowedSectors) > 0 && !containsString(d.AllowedSectors, ev.Sector) {
		return false
	}
	for _, t := range d.ExcludedTickers {
		if t == ev.Ticker {
			return false
		}
	}
	return true
}

// CheckEntry decides whether the strategy enters on this event.
// Universe filters are checked first; with no condition groups
// defined, entry is permitted unconditionally once filters pass.
func (d *Definition) CheckEntry(ev core.EventData) bool {
	if !d.AllowsEvent(ev) {
		return false
	}
	if len(d.EntryConditions) == 0 {
		return true
	}
	if d.EntryLogic == LogicOr {
		for _, g := range d.EntryConditions {
			if g.Evaluate(ev) {
				return true
			}
		}
		return false
	}
	for _, g := range d.EntryConditions {
		if !g.Evaluate(ev) {
			return false
		}
	}
	return true
}

// EntryDirection picks the trade side for an event: long unless the
// strategy is short-only, or the strategy trades both sides and the
// event carries a bearish or negative signal.
func (d *Definition) EntryDirection(ev core.EventData) TradeDirection {
	switch d.Direction {
	case DirectionShort:
		return DirectionShort
	case DirectionBoth:
		if ev.BearishSignal || ev.Direction == core.DirectionNegative {
			return DirectionShort
		}
	}
	return DirectionLong
}

// Parse decodes a full strategy definition from JSON.
func Parse(raw []byte) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, core.WrapError(core.ErrStrategyInvalid, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Direction == "" {
		d.Direction = DirectionLong
	}
	return &d, nil
}

// Marshal encodes the definition to JSON in the persisted format.
func (d *Definition) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func containsEventType(list []core.EventType, v core.EventType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
