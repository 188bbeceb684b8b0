package strategy

import (
	"fmt"

	"github.com/catalystlab/catalyst/internal/core"
)

// Exit reasons reported on closed trades.
const (
	ExitStopLoss      = "stop_loss"
	ExitTakeProfit    = "take_profit"
	ExitMaxHolding    = "max_holding_days"
	ExitTrailingStop  = "trailing_stop"
	ExitBearishSignal = "bearish_signal"
	ExitOnEvent       = "exit_on_event"
	ExitEndOfBacktest = "end_of_backtest"
)

// ExitCondition holds the optional exit thresholds of a strategy. A
// nil threshold never fires. Checks run in a fixed priority order and
// the first match wins; simultaneous breaches are never aggregated.
type ExitCondition struct {
	StopLossPct         *float64         `json:"stop_loss_pct,omitempty"`
	TakeProfitPct       *float64         `json:"take_profit_pct,omitempty"`
	MaxHoldingDays      *int             `json:"max_holding_days,omitempty"`
	TrailingStopPct     *float64         `json:"trailing_stop_pct,omitempty"`
	ExitOnBearishSignal bool             `json:"exit_on_bearish_signal,omitempty"`
	ExitOnEvent         []core.EventType `json:"exit_on_event,omitempty"`
}

// ExitCheck is the per-tick input to CheckExit for one open position.
type ExitCheck struct {
	CurrentReturnPct float64
	DaysHeld         int
	MaxReturnPct     float64
	HasBearishSignal bool
	NewEventType     core.EventType
}

// CheckExit evaluates the exit rules in priority order:
// stop_loss, take_profit, max_holding_days, trailing_stop,
// bearish signal, forced exit event. It returns whether an exit
// fired and the reason string for the trade record.
func (x ExitCondition) CheckExit(in ExitCheck) (bool, string) {
	if x.StopLossPct != nil && in.CurrentReturnPct <= -*x.StopLossPct {
		return true, fmt.Sprintf("%s_%.1f%%", ExitStopLoss, *x.StopLossPct)
	}
	if x.TakeProfitPct != nil && in.CurrentReturnPct >= *x.TakeProfitPct {
		return true, fmt.Sprintf("%s_%.1f%%", ExitTakeProfit, *x.TakeProfitPct)
	}
	if x.MaxHoldingDays != nil && in.DaysHeld >= *x.MaxHoldingDays {
		return true, fmt.Sprintf("%s_%d", ExitMaxHolding, *x.MaxHoldingDays)
	}
	if x.TrailingStopPct != nil && in.MaxReturnPct > 0 &&
		in.CurrentReturnPct < in.MaxReturnPct-*x.TrailingStopPct {
		return true, ExitTrailingStop
	}
	if x.ExitOnBearishSignal && in.HasBearishSignal {
		return true, ExitBearishSignal
	}
	if in.NewEventType != "" {
		for _, et := range x.ExitOnEvent {
			if et == in.NewEventType {
				return true, fmt.Sprintf("%s_%s", ExitOnEvent, et)
			}
		}
	}
	return false, ""
}
