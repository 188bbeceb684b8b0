package backtest

import (
	"encoding/json"
	"testing"

	"github.com/catalystlab/catalyst/internal/strategy"
)

func sampleResult() *Result {
	p := curvePortfolio(100_000, []float64{100_000, 98_000, 104_000})
	p.Closed = []*Trade{
		closedTrade(1, 4, strategy.DirectionLong, 2),
		closedTrade(2, -2, strategy.DirectionShort, 1),
	}

	return &Result{
		Strategy:        strategy.HighImpactMomentum(),
		Metrics:         CalculateMetrics(p),
		Trades:          p.Closed,
		EquityCurve:     p.EquityCurve,
		StartDate:       day(0),
		EndDate:         day(2),
		InitialCapital:  100_000,
		FinalEquity:     104_000,
		EventsProcessed: 5,
		EventsMatched:   4,
	}
}

func TestResult_ToMapSerializes(t *testing.T) {
	doc := sampleResult().ToMap()

	// The document must be JSON-clean: no NaN or Inf anywhere.
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("result document must serialize: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	summary := doc["summary"].(map[string]any)
	if summary["events_processed"] != 5 || summary["events_matched"] != 4 {
		t.Errorf("event counts wrong: %+v", summary)
	}
	if summary["total_trades"] != 2 {
		t.Errorf("trade count wrong: %+v", summary)
	}

	trades := doc["trades"].([]map[string]any)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trade rows, got %d", len(trades))
	}
	if trades[0]["trade_id"] != 1 || trades[0]["direction"] != "long" {
		t.Errorf("trade row wrong: %+v", trades[0])
	}

	curve := doc["equity_curve"].([]map[string]any)
	if len(curve) != 3 {
		t.Errorf("expected 3 equity points, got %d", len(curve))
	}
}

func TestResult_ToMapNilRatios(t *testing.T) {
	r := &Result{
		Strategy:       strategy.HighImpactMomentum(),
		Metrics:        CalculateMetrics(NewPortfolio(100_000)),
		StartDate:      day(0),
		EndDate:        day(1),
		InitialCapital: 100_000,
		FinalEquity:    100_000,
	}

	doc := r.ToMap()
	adjusted := doc["metrics"].(map[string]any)["risk_adjusted"].(map[string]any)
	if adjusted["sharpe_ratio"] != nil {
		t.Error("undefined Sharpe must serialize as null")
	}

	if _, err := json.Marshal(doc); err != nil {
		t.Errorf("empty result must serialize: %v", err)
	}
}
