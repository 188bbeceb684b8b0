// Package strategy holds the declarative trading-strategy model:
// entry condition trees, exit rules, position sizing and universe
// filters. It is pure data plus evaluation logic with no I/O.
package strategy

import (
	"encoding/json"

	"github.com/catalystlab/catalyst/internal/core"
)

// Operator is a comparison operator usable in a signal condition.
type Operator string

const (
	OpGT    Operator = ">"
	OpLT    Operator = "<"
	OpGTE   Operator = ">="
	OpLTE   Operator = "<="
	OpEQ    Operator = "=="
	OpNEQ   Operator = "!="
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
)

// LogicOp combines condition results inside a group or across groups.
type LogicOp string

const (
	LogicAnd LogicOp = "and"
	LogicOr  LogicOp = "or"
)

// SignalCondition compares one event signal against a literal value.
// A missing signal or a type mismatch makes the condition false; it
// never errors.
type SignalCondition struct {
	Signal   string   `json:"signal"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Evaluate resolves the condition against an event's signals.
func (c SignalCondition) Evaluate(ev core.EventData) bool {
	sv, ok := ev.Signal(core.SignalName(c.Signal))
	if !ok {
		return false
	}

	switch c.Operator {
	case OpGT, OpLT, OpGTE, OpLTE:
		if sv.Kind != core.SignalNumber {
			return false
		}
		threshold, ok := toFloat(c.Value)
		if !ok {
			return false
		}
		switch c.Operator {
		case OpGT:
			return sv.Num > threshold
		case OpLT:
			return sv.Num < threshold
		case OpGTE:
			return sv.Num >= threshold
		case OpLTE:
			return sv.Num <= threshold
		}
		return false
	case OpEQ:
		return valueEquals(sv, c.Value)
	case OpNEQ:
		// Distinct from "not equal or missing": the signal is present,
		// so a failed equality really means inequality.
		return !valueEquals(sv, c.Value)
	case OpIn, OpNotIn:
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		found := false
		for _, item := range list {
			if valueEquals(sv, item) {
				found = true
				break
			}
		}
		if c.Operator == OpIn {
			return found
		}
		return !found
	}
	return false
}

// ConditionGroup is a list of conditions combined with a single
// logical operator.
type ConditionGroup struct {
	Logic      LogicOp           `json:"logic"`
	Conditions []SignalCondition `json:"conditions"`
}

// Evaluate applies the group operator across all member conditions.
// An empty group is vacuously true.
func (g ConditionGroup) Evaluate(ev core.EventData) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	if g.Logic == LogicOr {
		for _, c := range g.Conditions {
			if c.Evaluate(ev) {
				return true
			}
		}
		return false
	}
	// Default to AND, matching the persisted-strategy format.
	for _, c := range g.Conditions {
		if !c.Evaluate(ev) {
			return false
		}
	}
	return true
}

// entryConditionsJSON is the wire shape of persisted entry conditions.
type entryConditionsJSON struct {
	Logic  LogicOp          `json:"logic"`
	Groups []ConditionGroup `json:"groups"`
}

// ParseEntryConditions decodes the persisted entry-condition JSON.
// Malformed JSON degrades to no conditions (entry permitted once
// universe filters pass) rather than failing the strategy load; the
// caller is expected to log the returned error.
func ParseEntryConditions(raw []byte) ([]ConditionGroup, LogicOp, error) {
	if len(raw) == 0 {
		return nil, LogicAnd, nil
	}
	var wire entryConditionsJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, LogicAnd, core.WrapError(core.ErrStrategyInvalid, err)
	}
	logic := wire.Logic
	if logic != LogicOr {
		logic = LogicAnd
	}
	return wire.Groups, logic, nil
}

// MarshalEntryConditions encodes condition groups back into the
// persisted wire shape.
func MarshalEntryConditions(groups []ConditionGroup, logic LogicOp) ([]byte, error) {
	return json.Marshal(entryConditionsJSON{Logic: logic, Groups: groups})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func valueEquals(sv core.SignalValue, v any) bool {
	switch sv.Kind {
	case core.SignalNumber:
		f, ok := toFloat(v)
		return ok && sv.Num == f
	case core.SignalText:
		s, ok := v.(string)
		return ok && sv.Text == s
	case core.SignalBool:
		b, ok := v.(bool)
		return ok && sv.Flag == b
	}
	return false
}
