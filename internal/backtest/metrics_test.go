package backtest

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/catalystlab/catalyst/internal/strategy"
)

func closedTrade(id int, pnlPct float64, direction strategy.TradeDirection, holdingDays int) *Trade {
	entry := day(0)
	size := 10_000.0
	return &Trade{
		ID:           id,
		Ticker:       "ABC",
		Direction:    direction,
		EntryDate:    entry,
		EntryPrice:   100,
		PositionSize: size,
		ExitDate:     entry.AddDate(0, 0, holdingDays),
		ExitPrice:    100 * (1 + pnlPct/100),
		PnLPct:       pnlPct,
		PnL:          size * pnlPct / 100,
		Status:       TradeClosed,
	}
}

func curvePortfolio(initial float64, equities []float64) *Portfolio {
	p := NewPortfolio(initial)
	for i, eq := range equities {
		p.EquityCurve = append(p.EquityCurve, EquityPoint{Time: day(i), Equity: eq})
	}
	return p
}

func TestCalculateMetrics_Returns(t *testing.T) {
	p := curvePortfolio(100_000, []float64{100_000, 105_000, 110_000})

	m := CalculateMetrics(p)
	if math.Abs(m.TotalReturnPct-10) > 1e-9 {
		t.Errorf("expected 10%% total return, got %f", m.TotalReturnPct)
	}
	if m.TotalReturnDollars != 10_000 {
		t.Errorf("expected 10000 dollars, got %f", m.TotalReturnDollars)
	}
	if m.CAGRPct <= 0 {
		t.Errorf("positive return must yield positive CAGR, got %f", m.CAGRPct)
	}
	if m.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", m.Samples)
	}
}

func TestCalculateMetrics_Deterministic(t *testing.T) {
	p := curvePortfolio(100_000, []float64{100_000, 98_000, 103_000, 101_000, 107_000})
	p.Closed = []*Trade{
		closedTrade(1, 5, strategy.DirectionLong, 3),
		closedTrade(2, -2, strategy.DirectionLong, 1),
		closedTrade(3, 4, strategy.DirectionShort, 2),
	}

	first := CalculateMetrics(p)
	second := CalculateMetrics(p)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated calculation over the same portfolio must be identical")
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Peak 120 at index 1, trough 90 at index 3: 25% drawdown over 2 samples.
	curve := []EquityPoint{
		{Time: day(0), Equity: 100},
		{Time: day(1), Equity: 120},
		{Time: day(2), Equity: 110},
		{Time: day(3), Equity: 90},
		{Time: day(4), Equity: 130},
	}

	pct, dollars, duration := maxDrawdown(curve)
	if math.Abs(pct-25) > 1e-9 {
		t.Errorf("expected 25%% drawdown, got %f", pct)
	}
	if dollars != 30 {
		t.Errorf("expected 30 dollars, got %f", dollars)
	}
	if duration != 2 {
		t.Errorf("expected duration 2, got %d", duration)
	}
}

func TestMaxDrawdown_MonotonicCurve(t *testing.T) {
	curve := []EquityPoint{
		{Time: day(0), Equity: 100},
		{Time: day(1), Equity: 110},
		{Time: day(2), Equity: 125},
	}
	pct, _, _ := maxDrawdown(curve)
	if pct != 0 {
		t.Errorf("rising curve has zero drawdown, got %f", pct)
	}
}

func TestRatios_UndefinedCases(t *testing.T) {
	// Too few samples: every ratio undefined.
	m := CalculateMetrics(curvePortfolio(100_000, []float64{100_000}))
	if m.SharpeRatio != nil || m.SortinoRatio != nil || m.CalmarRatio != nil {
		t.Error("single-sample run must leave all ratios nil")
	}

	// Flat curve: zero volatility and zero drawdown.
	m = CalculateMetrics(curvePortfolio(100_000, []float64{100_000, 100_000, 100_000}))
	if m.SharpeRatio != nil {
		t.Error("zero volatility must leave Sharpe nil")
	}
	if m.CalmarRatio != nil {
		t.Error("zero drawdown must leave Calmar nil")
	}

	// No losing days: Sortino undefined, Sharpe defined.
	m = CalculateMetrics(curvePortfolio(100_000, []float64{100_000, 101_000, 103_000}))
	if m.SortinoRatio != nil {
		t.Error("no negative returns must leave Sortino nil")
	}
	if m.SharpeRatio == nil {
		t.Error("varying returns must define Sharpe")
	}
}

func TestFillTradeStats(t *testing.T) {
	var m Metrics
	fillTradeStats(&m, []*Trade{
		closedTrade(1, 10, strategy.DirectionLong, 5),
		closedTrade(2, 6, strategy.DirectionLong, 3),
		closedTrade(3, -4, strategy.DirectionLong, 2),
		closedTrade(4, 8, strategy.DirectionShort, 4),
	})

	if m.TotalTrades != 4 || m.WinningTrades != 3 || m.LosingTrades != 1 {
		t.Errorf("counts wrong: %+v", m)
	}
	if m.WinRatePct != 75 {
		t.Errorf("expected 75%% win rate, got %f", m.WinRatePct)
	}
	if m.BestTradePct != 10 || m.WorstTradePct != -4 {
		t.Errorf("best/worst wrong: %f %f", m.BestTradePct, m.WorstTradePct)
	}
	if math.Abs(m.AvgWinPct-8) > 1e-9 {
		t.Errorf("expected avg win 8%%, got %f", m.AvgWinPct)
	}
	if m.AvgLossPct != -4 {
		t.Errorf("expected avg loss -4%%, got %f", m.AvgLossPct)
	}
	if m.MaxConsecutiveWins != 2 || m.MaxConsecutiveLosses != 1 {
		t.Errorf("streaks wrong: %d %d", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
	}
	if math.Abs(m.AvgHoldingDays-3.5) > 1e-9 {
		t.Errorf("expected avg holding 3.5, got %f", m.AvgHoldingDays)
	}
	if math.Abs(m.ProfitFactor-6) > 1e-9 {
		t.Errorf("expected profit factor 6, got %f", m.ProfitFactor)
	}

	if m.LongTrades != 3 || m.ShortTrades != 1 {
		t.Errorf("direction counts wrong: %d %d", m.LongTrades, m.ShortTrades)
	}
	if math.Abs(m.LongWinRatePct-100.0/1.5) > 1e-9 {
		t.Errorf("long win rate wrong: %f", m.LongWinRatePct)
	}
	if m.ShortWinRatePct != 100 {
		t.Errorf("short win rate wrong: %f", m.ShortWinRatePct)
	}
}

func TestFillTradeStats_ProfitFactorCapped(t *testing.T) {
	var m Metrics
	fillTradeStats(&m, []*Trade{
		closedTrade(1, 50, strategy.DirectionLong, 1),
		closedTrade(2, 40, strategy.DirectionLong, 1),
	})
	if m.ProfitFactor != profitFactorCap {
		t.Errorf("all-winning run must cap profit factor, got %f", m.ProfitFactor)
	}
}

func TestFillTradeStats_NoTrades(t *testing.T) {
	var m Metrics
	fillTradeStats(&m, nil)
	if m.TotalTrades != 0 || m.BestTradePct != 0 || m.WorstTradePct != 0 {
		t.Errorf("empty trade list must leave zero stats: %+v", m)
	}
}

func TestMonthlyReturns(t *testing.T) {
	curve := []EquityPoint{
		{Time: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Equity: 100},
		{Time: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Equity: 110},
		{Time: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), Equity: 110},
		{Time: time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), Equity: 99},
	}

	monthly := monthlyReturns(curve)
	if len(monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(monthly))
	}
	if monthly[0].Month != "2024-01" || math.Abs(monthly[0].ReturnPct-10) > 1e-9 {
		t.Errorf("january wrong: %+v", monthly[0])
	}
	if monthly[1].Month != "2024-02" || math.Abs(monthly[1].ReturnPct-(-10)) > 1e-9 {
		t.Errorf("february wrong: %+v", monthly[1])
	}
}

func TestValueAtRisk(t *testing.T) {
	// 20 returns: 5th percentile index is 1, CVaR averages the two worst.
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = float64(i-5) / 100 // -0.05 .. 0.14
	}

	varPct, cvarPct := valueAtRisk(returns)
	if math.Abs(varPct-(-4)) > 1e-9 {
		t.Errorf("expected VaR -4%%, got %f", varPct)
	}
	if math.Abs(cvarPct-(-4.5)) > 1e-9 {
		t.Errorf("expected CVaR -4.5%%, got %f", cvarPct)
	}
}
