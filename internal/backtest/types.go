// Package backtest replays historical events through a declarative
// strategy, tracking a simulated portfolio and computing the
// performance report. The simulation is single-threaded and
// deterministic; parallel backtests each own their portfolio.
package backtest

import (
	"time"

	"github.com/catalystlab/catalyst/internal/core"
	"github.com/catalystlab/catalyst/internal/strategy"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade is one simulated position from entry to exit. It is created
// open, revalued in place as events arrive, and closed exactly once.
type Trade struct {
	ID           int
	Ticker       string
	EventID      string
	EventType    core.EventType
	Direction    strategy.TradeDirection
	EntryDate    time.Time
	EntryPrice   float64
	PositionSize float64 // dollars committed at entry

	ExitDate   time.Time
	ExitPrice  float64
	ExitReason string
	PnL        float64 // dollars
	PnLPct     float64
	Status     TradeStatus

	// Peak excursion in both directions, updated on every revaluation.
	MaxProfitPct   float64
	MaxDrawdownPct float64

	// Horizon snapshots from the entry event, used to approximate a
	// mark when no fresh price arrives for this ticker.
	price1D  *float64
	price5D  *float64
	price20D *float64

	// Last known mark, forward-filled between real prices so the
	// simulation stays deterministic.
	lastMark float64
}

// IsWin reports whether the trade closed profitable.
func (t *Trade) IsWin() bool { return t.PnL > 0 }

// IsClosed reports whether the trade has exited.
func (t *Trade) IsClosed() bool { return t.Status == TradeClosed }

// HoldingDays is the whole number of days between entry and exit.
func (t *Trade) HoldingDays() int {
	if t.ExitDate.IsZero() {
		return 0
	}
	return daysBetween(t.EntryDate, t.ExitDate)
}

// returnPctAt computes the simple percentage return of the position
// marked at the given price, sign-adjusted for shorts.
func (t *Trade) returnPctAt(mark float64) float64 {
	if t.EntryPrice <= 0 {
		return 0
	}
	ret := (mark - t.EntryPrice) / t.EntryPrice * 100
	if t.Direction == strategy.DirectionShort {
		return -ret
	}
	return ret
}

// unrealizedPnL is the open position's P&L in dollars at its last mark.
func (t *Trade) unrealizedPnL() float64 {
	return t.PositionSize * t.returnPctAt(t.lastMark) / 100
}

// EquityPoint is one sample of the portfolio equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Portfolio is the mutable simulation state: cash, open and closed
// trades, and the equity curve. One simulation run owns its Portfolio
// exclusively for its lifetime.
type Portfolio struct {
	InitialCapital float64
	Cash           float64
	Open           []*Trade
	Closed         []*Trade
	EquityCurve    []EquityPoint
	Wins           int
	Losses         int

	lastTradeDate map[string]time.Time
	openPerTicker map[string]int
	nextTradeID   int
}

// NewPortfolio creates a portfolio holding only cash.
func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		InitialCapital: initialCapital,
		Cash:           initialCapital,
		lastTradeDate:  make(map[string]time.Time),
		openPerTicker:  make(map[string]int),
		nextTradeID:    1,
	}
}

// CurrentEquity is cash plus the marked value of all open positions.
func (p *Portfolio) CurrentEquity() float64 {
	equity := p.Cash
	for _, t := range p.Open {
		equity += t.PositionSize + t.unrealizedPnL()
	}
	return equity
}

// OpenCountFor reports the number of open trades on a ticker.
func (p *Portfolio) OpenCountFor(ticker string) int {
	return p.openPerTicker[ticker]
}

// openTrade registers a new open trade and debits its size from cash.
func (p *Portfolio) openTrade(t *Trade) {
	t.ID = p.nextTradeID
	p.nextTradeID++
	t.Status = TradeOpen
	t.lastMark = t.EntryPrice

	p.Cash -= t.PositionSize
	p.Open = append(p.Open, t)
	p.openPerTicker[t.Ticker]++
	p.lastTradeDate[t.Ticker] = t.EntryDate
}

// closeTrade finalizes a trade at the given mark, releasing position
// size plus P&L back to cash. Closing neither creates nor destroys
// equity: the cash credited equals the position's marked value.
func (p *Portfolio) closeTrade(t *Trade, when time.Time, mark float64, reason string) {
	t.lastMark = mark
	t.ExitDate = when
	t.ExitPrice = mark
	t.ExitReason = reason
	t.PnLPct = t.returnPctAt(mark)
	t.PnL = t.PositionSize * t.PnLPct / 100
	t.Status = TradeClosed

	p.Cash += t.PositionSize + t.PnL
	if t.PnL > 0 {
		p.Wins++
	} else {
		p.Losses++
	}

	for i, open := range p.Open {
		if open == t {
			p.Open = append(p.Open[:i], p.Open[i+1:]...)
			break
		}
	}
	if p.openPerTicker[t.Ticker] > 0 {
		p.openPerTicker[t.Ticker]--
	}
	p.Closed = append(p.Closed, t)
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
