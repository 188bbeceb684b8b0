package strategy

import (
	"strings"
	"testing"

	"github.com/catalystlab/catalyst/internal/core"
)

func TestCheckExit_StopLoss(t *testing.T) {
	x := ExitCondition{StopLossPct: core.Float(8)}

	fired, reason := x.CheckExit(ExitCheck{CurrentReturnPct: -8})
	if !fired {
		t.Fatal("stop loss must fire at exactly -8%")
	}
	if !strings.HasPrefix(reason, ExitStopLoss) {
		t.Errorf("unexpected reason %q", reason)
	}

	if fired, _ := x.CheckExit(ExitCheck{CurrentReturnPct: -7.9}); fired {
		t.Error("stop loss must not fire above threshold")
	}
}

func TestCheckExit_PriorityOrder(t *testing.T) {
	// Both stop loss and take profit would fire on absurd thresholds;
	// stop loss wins.
	x := ExitCondition{
		StopLossPct:   core.Float(-5), // fires for any return <= 5%
		TakeProfitPct: core.Float(1),
	}
	fired, reason := x.CheckExit(ExitCheck{CurrentReturnPct: 3})
	if !fired {
		t.Fatal("expected an exit")
	}
	if !strings.HasPrefix(reason, ExitStopLoss) {
		t.Errorf("stop loss must take priority over take profit, got %q", reason)
	}

	// Take profit beats max holding days.
	x = ExitCondition{
		TakeProfitPct:  core.Float(10),
		MaxHoldingDays: intPtr(5),
	}
	fired, reason = x.CheckExit(ExitCheck{CurrentReturnPct: 12, DaysHeld: 30})
	if !fired || !strings.HasPrefix(reason, ExitTakeProfit) {
		t.Errorf("take profit must take priority over max holding, got %q", reason)
	}

	// Max holding beats trailing stop.
	x = ExitCondition{
		MaxHoldingDays:  intPtr(5),
		TrailingStopPct: core.Float(2),
	}
	fired, reason = x.CheckExit(ExitCheck{CurrentReturnPct: 1, DaysHeld: 5, MaxReturnPct: 10})
	if !fired || !strings.HasPrefix(reason, ExitMaxHolding) {
		t.Errorf("max holding must take priority over trailing stop, got %q", reason)
	}
}

func TestCheckExit_MaxHoldingReason(t *testing.T) {
	x := ExitCondition{MaxHoldingDays: intPtr(1)}
	fired, reason := x.CheckExit(ExitCheck{DaysHeld: 1})
	if !fired {
		t.Fatal("max holding must fire at exactly the limit")
	}
	if reason != "max_holding_days_1" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestCheckExit_TrailingStop(t *testing.T) {
	x := ExitCondition{TrailingStopPct: core.Float(6)}

	// Peak 10%, now 3%: drop of 7% from peak fires.
	if fired, reason := x.CheckExit(ExitCheck{CurrentReturnPct: 3, MaxReturnPct: 10}); !fired || reason != ExitTrailingStop {
		t.Errorf("expected trailing stop, got fired=%v reason=%q", fired, reason)
	}

	// Drop of exactly the threshold does not fire.
	if fired, _ := x.CheckExit(ExitCheck{CurrentReturnPct: 4, MaxReturnPct: 10}); fired {
		t.Error("trailing stop must require drop strictly beyond threshold")
	}

	// Never armed before the position has been in profit.
	if fired, _ := x.CheckExit(ExitCheck{CurrentReturnPct: -10, MaxReturnPct: 0}); fired {
		t.Error("trailing stop must not fire before any profit")
	}
}

func TestCheckExit_BearishAndEvent(t *testing.T) {
	x := ExitCondition{
		ExitOnBearishSignal: true,
		ExitOnEvent:         []core.EventType{core.EventMergerNews},
	}

	if fired, reason := x.CheckExit(ExitCheck{HasBearishSignal: true}); !fired || reason != ExitBearishSignal {
		t.Errorf("expected bearish exit, got fired=%v reason=%q", fired, reason)
	}

	fired, reason := x.CheckExit(ExitCheck{NewEventType: core.EventMergerNews})
	if !fired || reason != "exit_on_event_merger_news" {
		t.Errorf("expected event exit, got fired=%v reason=%q", fired, reason)
	}

	if fired, _ := x.CheckExit(ExitCheck{NewEventType: core.EventEarnings}); fired {
		t.Error("unlisted event type must not force an exit")
	}
}

func TestCheckExit_NoThresholds(t *testing.T) {
	var x ExitCondition
	if fired, _ := x.CheckExit(ExitCheck{CurrentReturnPct: -99, DaysHeld: 999}); fired {
		t.Error("empty exit condition must never fire")
	}
}
