package backtest

import (
	"math"
	"sort"
	"time"

	"github.com/catalystlab/catalyst/internal/strategy"
)

// Metric computation constants.
const (
	tradingDaysPerYear = 252
	riskFreeRate       = 0.05
	profitFactorCap    = 99.99
)

// Metrics is the full performance and risk report computed from a
// finished portfolio. It is created once per run and never mutated.
type Metrics struct {
	// Returns
	TotalReturnPct     float64
	TotalReturnDollars float64
	CAGRPct            float64

	// Risk
	AnnualVolatilityPct float64
	MaxDrawdownPct      float64
	MaxDrawdownDollars  float64
	MaxDrawdownDuration int // equity-curve samples from peak to trough
	VaR95Pct            float64
	CVaR95Pct           float64

	// Risk-adjusted ratios; nil when undefined.
	SharpeRatio  *float64
	SortinoRatio *float64
	CalmarRatio  *float64

	// Trade statistics
	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	WinRatePct           float64
	ProfitFactor         float64
	ExpectancyPct        float64
	AvgWinPct            float64
	AvgLossPct           float64
	BestTradePct         float64
	WorstTradePct        float64
	AvgHoldingDays       float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	// Direction breakdown
	LongTrades      int
	LongWinRatePct  float64
	ShortTrades     int
	ShortWinRatePct float64

	// Period
	StartDate time.Time
	EndDate   time.Time
	Samples   int

	MonthlyReturns []MonthlyReturn
}

// MonthlyReturn is the equity return of one calendar month.
type MonthlyReturn struct {
	Month     string // "2006-01"
	ReturnPct float64
}

// CalculateMetrics computes the full report from a finished
// portfolio. It is a pure function: the portfolio is read-only and
// repeated calls yield identical results.
func CalculateMetrics(p *Portfolio) Metrics {
	m := Metrics{}

	finalEquity := p.InitialCapital
	if n := len(p.EquityCurve); n > 0 {
		finalEquity = p.EquityCurve[n-1].Equity
		m.StartDate = p.EquityCurve[0].Time
		m.EndDate = p.EquityCurve[n-1].Time
		m.Samples = n
	}

	if p.InitialCapital > 0 {
		m.TotalReturnPct = (finalEquity/p.InitialCapital - 1) * 100
	}
	m.TotalReturnDollars = finalEquity - p.InitialCapital
	m.CAGRPct = cagr(p.InitialCapital, finalEquity, m.StartDate, m.EndDate)

	returns := dailyReturns(p.EquityCurve)
	m.AnnualVolatilityPct = stdDev(returns) * math.Sqrt(tradingDaysPerYear) * 100
	m.MaxDrawdownPct, m.MaxDrawdownDollars, m.MaxDrawdownDuration = maxDrawdown(p.EquityCurve)
	m.VaR95Pct, m.CVaR95Pct = valueAtRisk(returns)

	m.SharpeRatio = sharpeRatio(returns)
	m.SortinoRatio = sortinoRatio(returns)
	m.CalmarRatio = calmarRatio(m.CAGRPct, m.MaxDrawdownPct)

	fillTradeStats(&m, p.Closed)
	m.MonthlyReturns = monthlyReturns(p.EquityCurve)

	return m
}

// cagr computes the compound annual growth rate in percent over the
// elapsed calendar period.
func cagr(initial, final float64, start, end time.Time) float64 {
	if initial <= 0 || final <= 0 || !end.After(start) {
		return 0
	}
	years := end.Sub(start).Hours() / 24 / 365.25
	if years <= 0 {
		return 0
	}
	return (math.Pow(final/initial, 1/years) - 1) * 100
}

// dailyReturns converts the equity curve into simple returns between
// consecutive samples.
func dailyReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}
	return returns
}

// maxDrawdown scans the curve tracking the running peak, returning
// the deepest peak-to-trough drop in percent, dollars, and samples.
func maxDrawdown(curve []EquityPoint) (pct, dollars float64, duration int) {
	if len(curve) == 0 {
		return 0, 0, 0
	}

	peak := curve[0].Equity
	peakIdx := 0
	for i, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
			peakIdx = i
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - point.Equity) / peak * 100
		if dd > pct {
			pct = dd
			dollars = peak - point.Equity
			duration = i - peakIdx
		}
	}
	return pct, dollars, duration
}

// valueAtRisk returns the 95% VaR (5th percentile of daily returns)
// and CVaR (mean of returns at or below that percentile), in percent.
func valueAtRisk(returns []float64) (varPct, cvarPct float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	idx := int(math.Floor(0.05 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	varPct = sorted[idx] * 100

	var sum float64
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
	}
	cvarPct = sum / float64(idx+1) * 100
	return varPct, cvarPct
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// sharpeRatio computes the annualized excess return over total
// volatility. Undefined with fewer than two samples or zero stdev.
func sharpeRatio(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	sd := stdDev(returns)
	if sd == 0 {
		return nil
	}
	annualReturn := mean(returns) * tradingDaysPerYear
	annualStd := sd * math.Sqrt(tradingDaysPerYear)
	ratio := (annualReturn - riskFreeRate) / annualStd
	return &ratio
}

// sortinoRatio is Sharpe with downside deviation in the denominator.
// Undefined when there are no negative returns.
func sortinoRatio(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) == 0 {
		return nil
	}
	downside := stdDev(negative)
	if downside == 0 {
		return nil
	}
	annualReturn := mean(returns) * tradingDaysPerYear
	annualDownside := downside * math.Sqrt(tradingDaysPerYear)
	ratio := (annualReturn - riskFreeRate) / annualDownside
	return &ratio
}

// calmarRatio divides CAGR by max drawdown. Undefined at zero drawdown.
func calmarRatio(cagrPct, maxDrawdownPct float64) *float64 {
	if maxDrawdownPct == 0 {
		return nil
	}
	ratio := cagrPct / maxDrawdownPct
	return &ratio
}

func fillTradeStats(m *Metrics, closed []*Trade) {
	m.TotalTrades = len(closed)
	if len(closed) == 0 {
		return
	}

	var sumWinPct, sumLossPct, sumHolding float64
	var currentWins, currentLosses int
	m.BestTradePct = math.Inf(-1)
	m.WorstTradePct = math.Inf(1)

	for _, t := range closed {
		sumHolding += float64(t.HoldingDays())
		if t.PnLPct > m.BestTradePct {
			m.BestTradePct = t.PnLPct
		}
		if t.PnLPct < m.WorstTradePct {
			m.WorstTradePct = t.PnLPct
		}

		if t.IsWin() {
			m.WinningTrades++
			sumWinPct += t.PnLPct
			currentWins++
			currentLosses = 0
		} else {
			m.LosingTrades++
			sumLossPct += t.PnLPct
			currentLosses++
			currentWins = 0
		}
		if currentWins > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = currentWins
		}
		if currentLosses > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = currentLosses
		}

		switch t.Direction {
		case strategy.DirectionShort:
			m.ShortTrades++
			if t.IsWin() {
				m.ShortWinRatePct++
			}
		default:
			m.LongTrades++
			if t.IsWin() {
				m.LongWinRatePct++
			}
		}
	}

	m.WinRatePct = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.AvgHoldingDays = sumHolding / float64(m.TotalTrades)

	if m.WinningTrades > 0 {
		m.AvgWinPct = sumWinPct / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLossPct = sumLossPct / float64(m.LosingTrades)
	}

	switch {
	case sumLossPct == 0 && sumWinPct > 0:
		m.ProfitFactor = profitFactorCap
	case sumLossPct != 0:
		m.ProfitFactor = sumWinPct / math.Abs(sumLossPct)
		if m.ProfitFactor > profitFactorCap {
			m.ProfitFactor = profitFactorCap
		}
	}

	winRate := m.WinRatePct / 100
	m.ExpectancyPct = winRate*m.AvgWinPct + (1-winRate)*m.AvgLossPct

	if m.LongTrades > 0 {
		m.LongWinRatePct = m.LongWinRatePct / float64(m.LongTrades) * 100
	}
	if m.ShortTrades > 0 {
		m.ShortWinRatePct = m.ShortWinRatePct / float64(m.ShortTrades) * 100
	}
}

// monthlyReturns buckets the equity curve by calendar month; each
// month's return uses the first and last sample within that month.
func monthlyReturns(curve []EquityPoint) []MonthlyReturn {
	if len(curve) == 0 {
		return nil
	}

	type bucket struct {
		first float64
		last  float64
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, point := range curve {
		month := point.Time.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			buckets[month] = &bucket{first: point.Equity, last: point.Equity}
			order = append(order, month)
			continue
		}
		b.last = point.Equity
	}

	result := make([]MonthlyReturn, 0, len(order))
	for _, month := range order {
		b := buckets[month]
		var ret float64
		if b.first > 0 {
			ret = (b.last/b.first - 1) * 100
		}
		result = append(result, MonthlyReturn{Month: month, ReturnPct: ret})
	}
	return result
}
