// Package report renders a finished backtest result for humans: a
// plain-text summary for the CLI and, when an LLM provider is
// configured, a narrative analysis of the strategy's behavior.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/catalystlab/catalyst/internal/backtest"
	"github.com/catalystlab/catalyst/internal/core"
	"github.com/catalystlab/catalyst/internal/llm"
)

// Render formats the result as a plain-text report.
func Render(r *backtest.Result) string {
	m := r.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "Strategy: %s (%s)\n", r.Strategy.Name, r.Strategy.Direction)
	fmt.Fprintf(&b, "Period:   %s to %s\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Events:   %d processed, %d matched\n\n", r.EventsProcessed, r.EventsMatched)

	fmt.Fprintf(&b, "Capital:        %.2f -> %.2f\n", r.InitialCapital, r.FinalEquity)
	fmt.Fprintf(&b, "Total return:   %.2f%% (%.2f)\n", m.TotalReturnPct, m.TotalReturnDollars)
	fmt.Fprintf(&b, "CAGR:           %.2f%%\n", m.CAGRPct)
	fmt.Fprintf(&b, "Volatility:     %.2f%% annualized\n", m.AnnualVolatilityPct)
	fmt.Fprintf(&b, "Max drawdown:   %.2f%% (%.2f)\n", m.MaxDrawdownPct, m.MaxDrawdownDollars)
	fmt.Fprintf(&b, "Sharpe:         %s\n", ratioString(m.SharpeRatio))
	fmt.Fprintf(&b, "Sortino:        %s\n", ratioString(m.SortinoRatio))
	fmt.Fprintf(&b, "Calmar:         %s\n\n", ratioString(m.CalmarRatio))

	fmt.Fprintf(&b, "Trades:         %d (%d wins, %d losses, %.1f%% win rate)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRatePct)
	fmt.Fprintf(&b, "Profit factor:  %.2f\n", m.ProfitFactor)
	fmt.Fprintf(&b, "Expectancy:     %.2f%% per trade\n", m.ExpectancyPct)
	fmt.Fprintf(&b, "Avg holding:    %.1f days\n", m.AvgHoldingDays)

	if len(m.MonthlyReturns) > 0 {
		b.WriteString("\nMonthly returns:\n")
		for _, mr := range m.MonthlyReturns {
			fmt.Fprintf(&b, "  %s  %+.2f%%\n", mr.Month, mr.ReturnPct)
		}
	}
	return b.String()
}

func ratioString(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

const narrativeSystemPrompt = `You are a quantitative trading analyst.
Given backtest metrics in JSON, write a concise performance review:
what worked, what the main risks are, and whether the edge looks
robust or fragile. Three short paragraphs, no headings.`

// Generator produces LLM narrative summaries of backtest results.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a narrative generator over the given provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Narrative asks the LLM to review the result's metrics.
func (g *Generator) Narrative(ctx context.Context, r *backtest.Result) (string, error) {
	doc := r.ToMap()
	// Trade rows and equity samples blow up the prompt without adding
	// information the metrics don't already carry.
	delete(doc, "trades")
	delete(doc, "equity_curve")

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", core.WrapError(core.ErrReportFailed, err)
	}

	resp, err := g.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: narrativeSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: string(payload)},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return "", core.WrapError(core.ErrReportFailed, err)
	}
	return resp.Content, nil
}
