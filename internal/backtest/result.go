package backtest

import (
	"time"

	"github.com/catalystlab/catalyst/internal/strategy"
)

// Result holds the complete backtest output.
type Result struct {
	Strategy    *strategy.Definition
	Metrics     Metrics
	Trades      []*Trade
	EquityCurve []EquityPoint
	StartDate   time.Time
	EndDate     time.Time

	InitialCapital  float64
	FinalEquity     float64
	EventsProcessed int // events loaded from the store
	EventsMatched   int // events with resolvable prices fed to simulation
}

// ToMap renders the result as a JSON-serializable document: the shape
// consumed by the web layer and written to the archive.
func (r *Result) ToMap() map[string]any {
	trades := make([]map[string]any, 0, len(r.Trades))
	for _, t := range r.Trades {
		trades = append(trades, map[string]any{
			"trade_id":      t.ID,
			"ticker":        t.Ticker,
			"event_id":      t.EventID,
			"direction":     string(t.Direction),
			"entry_date":    t.EntryDate.Format(time.RFC3339),
			"entry_price":   t.EntryPrice,
			"exit_date":     t.ExitDate.Format(time.RFC3339),
			"exit_price":    t.ExitPrice,
			"position_size": t.PositionSize,
			"pnl_dollars":   t.PnL,
			"pnl_percent":   t.PnLPct,
			"exit_reason":   t.ExitReason,
			"holding_days":  t.HoldingDays(),
		})
	}

	curve := make([]map[string]any, 0, len(r.EquityCurve))
	for _, point := range r.EquityCurve {
		curve = append(curve, map[string]any{
			"date":   point.Time.Format(time.RFC3339),
			"equity": point.Equity,
		})
	}

	monthly := make([]map[string]any, 0, len(r.Metrics.MonthlyReturns))
	for _, mr := range r.Metrics.MonthlyReturns {
		monthly = append(monthly, map[string]any{
			"month":      mr.Month,
			"return_pct": mr.ReturnPct,
		})
	}

	m := r.Metrics
	return map[string]any{
		"strategy": map[string]any{
			"name":        r.Strategy.Name,
			"description": r.Strategy.Description,
			"version":     r.Strategy.Version,
			"direction":   string(r.Strategy.Direction),
		},
		"metrics": map[string]any{
			"returns": map[string]any{
				"total_return_pct":     m.TotalReturnPct,
				"total_return_dollars": m.TotalReturnDollars,
				"cagr_pct":             m.CAGRPct,
			},
			"risk": map[string]any{
				"annual_volatility_pct": m.AnnualVolatilityPct,
				"max_drawdown_pct":      m.MaxDrawdownPct,
				"max_drawdown_dollars":  m.MaxDrawdownDollars,
				"max_drawdown_duration": m.MaxDrawdownDuration,
				"var_95_pct":            m.VaR95Pct,
				"cvar_95_pct":           m.CVaR95Pct,
			},
			"risk_adjusted": map[string]any{
				"sharpe_ratio":  ratioOrNil(m.SharpeRatio),
				"sortino_ratio": ratioOrNil(m.SortinoRatio),
				"calmar_ratio":  ratioOrNil(m.CalmarRatio),
			},
			"trades": map[string]any{
				"total_trades":   m.TotalTrades,
				"winning_trades": m.WinningTrades,
				"losing_trades":  m.LosingTrades,
				"win_rate_pct":   m.WinRatePct,
				"profit_factor":  m.ProfitFactor,
				"expectancy_pct": m.ExpectancyPct,
			},
			"trade_details": map[string]any{
				"avg_win_pct":            m.AvgWinPct,
				"avg_loss_pct":           m.AvgLossPct,
				"best_trade_pct":         m.BestTradePct,
				"worst_trade_pct":        m.WorstTradePct,
				"avg_holding_days":       m.AvgHoldingDays,
				"max_consecutive_wins":   m.MaxConsecutiveWins,
				"max_consecutive_losses": m.MaxConsecutiveLosses,
			},
			"direction_breakdown": map[string]any{
				"long_trades":        m.LongTrades,
				"long_win_rate_pct":  m.LongWinRatePct,
				"short_trades":       m.ShortTrades,
				"short_win_rate_pct": m.ShortWinRatePct,
			},
			"period": map[string]any{
				"start_date": r.StartDate.Format("2006-01-02"),
				"end_date":   r.EndDate.Format("2006-01-02"),
				"samples":    m.Samples,
			},
			"monthly_returns": monthly,
		},
		"trades":       trades,
		"equity_curve": curve,
		"summary": map[string]any{
			"initial_capital":  r.InitialCapital,
			"final_equity":     r.FinalEquity,
			"total_return_pct": m.TotalReturnPct,
			"events_processed": r.EventsProcessed,
			"events_matched":   r.EventsMatched,
			"total_trades":     m.TotalTrades,
		},
	}
}

func ratioOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
