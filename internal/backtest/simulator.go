package backtest

import (
	"context"

	"go.uber.org/zap"

	"github.com/catalystlab/catalyst/internal/core"
	"github.com/catalystlab/catalyst/internal/strategy"
)

// Simulator replays a time-ordered event sequence through a strategy
// definition, producing the final portfolio state. A Simulator is
// cheap to construct and a fresh one is used per run.
type Simulator struct {
	strat  *strategy.Definition
	logger *zap.Logger
}

// NewSimulator creates a simulator for the given strategy.
func NewSimulator(strat *strategy.Definition, logger ...*zap.Logger) *Simulator {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Simulator{strat: strat, logger: l}
}

// Run consumes events sorted by timestamp and returns the resulting
// portfolio. Every trade opened during the run is closed by the time
// Run returns; positions still open at the last event are force-closed
// at an estimated price.
func (s *Simulator) Run(ctx context.Context, initialCapital float64, events []core.EventData) (*Portfolio, error) {
	p := NewPortfolio(initialCapital)

	for i := range events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ev := events[i]
		s.processOpenPositions(p, ev)
		s.tryEnter(p, ev)
		p.EquityCurve = append(p.EquityCurve, EquityPoint{Time: ev.Timestamp, Equity: p.CurrentEquity()})
	}

	s.closeRemaining(p, events)
	return p, nil
}

// processOpenPositions revalues every open trade against the current
// event and closes those whose exit condition fires.
func (s *Simulator) processOpenPositions(p *Portfolio, ev core.EventData) {
	type pendingClose struct {
		trade  *Trade
		mark   float64
		reason string
	}
	var queue []pendingClose

	for _, t := range p.Open {
		mark := s.markFor(t, ev)
		t.lastMark = mark

		ret := t.returnPctAt(mark)
		if ret > t.MaxProfitPct {
			t.MaxProfitPct = ret
		}
		if ret < 0 && -ret > t.MaxDrawdownPct {
			t.MaxDrawdownPct = -ret
		}

		fired, reason := s.strat.Exit.CheckExit(strategy.ExitCheck{
			CurrentReturnPct: ret,
			DaysHeld:         daysBetween(t.EntryDate, ev.Timestamp),
			MaxReturnPct:     t.MaxProfitPct,
			HasBearishSignal: ev.BearishSignal && ev.Ticker == t.Ticker,
			NewEventType:     ev.EventType,
		})
		if fired {
			queue = append(queue, pendingClose{trade: t, mark: mark, reason: reason})
		}
	}

	for _, pc := range queue {
		p.closeTrade(pc.trade, ev.Timestamp, pc.mark, pc.reason)
		s.logger.Debug("position closed",
			zap.String("ticker", pc.trade.Ticker),
			zap.String("reason", pc.reason),
			zap.Float64("pnl_pct", pc.trade.PnLPct),
		)
	}
}

// markFor determines the price used to revalue a position on this
// tick. A fresh event for the position's own ticker carries a real
// price; otherwise the position's horizon snapshots approximate a
// mark by days held, and failing those the last known mark is
// forward-filled. Unrelated tickers are not re-priced on every tick.
func (s *Simulator) markFor(t *Trade, ev core.EventData) float64 {
	if ev.Ticker == t.Ticker && ev.PriceAtEvent != nil && *ev.PriceAtEvent > 0 {
		return *ev.PriceAtEvent
	}

	days := daysBetween(t.EntryDate, ev.Timestamp)
	switch {
	case days >= 20 && t.price20D != nil:
		return *t.price20D
	case days >= 5 && t.price5D != nil:
		return *t.price5D
	case days >= 1 && t.price1D != nil:
		return *t.price1D
	}
	return t.lastMark
}

// tryEnter opens a position on the event when the strategy entry
// fires and portfolio constraints allow it.
func (s *Simulator) tryEnter(p *Portfolio, ev core.EventData) {
	if ev.PriceAtEvent == nil || *ev.PriceAtEvent <= 0 {
		return
	}
	if !s.strat.CheckEntry(ev) {
		return
	}

	maxPositions := s.strat.Position.MaxPositions
	if maxPositions > 0 && len(p.Open) >= maxPositions {
		return
	}
	if !s.strat.AllowPyramiding && p.OpenCountFor(ev.Ticker) > 0 {
		return
	}
	if min := s.strat.MinDaysBetweenTrades; min > 0 {
		if last, ok := p.lastTradeDate[ev.Ticker]; ok && daysBetween(last, ev.Timestamp) < min {
			return
		}
	}

	size := s.strat.Position.CalculateSize(p.CurrentEquity(), ev.EntryConfidence(), 0)
	if size <= 0 {
		return
	}
	if size > p.Cash {
		size = p.Cash
	}
	if size <= 0 {
		return
	}

	t := &Trade{
		Ticker:       ev.Ticker,
		EventID:      ev.EventID,
		EventType:    ev.EventType,
		Direction:    s.strat.EntryDirection(ev),
		EntryDate:    ev.Timestamp,
		EntryPrice:   *ev.PriceAtEvent,
		PositionSize: size,
		price1D:      ev.Price1D,
		price5D:      ev.Price5D,
		price20D:     ev.Price20D,
	}
	p.openTrade(t)

	s.logger.Debug("position opened",
		zap.String("ticker", t.Ticker),
		zap.String("direction", string(t.Direction)),
		zap.Float64("size", size),
		zap.Float64("entry_price", t.EntryPrice),
	)
}

// closeRemaining force-closes positions still open after the last
// event. No real price exists beyond the data window, so the exit is
// estimated at half the trade's recorded peak return.
func (s *Simulator) closeRemaining(p *Portfolio, events []core.EventData) {
	if len(p.Open) == 0 || len(events) == 0 {
		return
	}
	endTime := events[len(events)-1].Timestamp

	for len(p.Open) > 0 {
		t := p.Open[0]
		estReturn := t.MaxProfitPct / 2
		mark := t.EntryPrice * (1 + estReturn/100)
		if t.Direction == strategy.DirectionShort {
			mark = t.EntryPrice * (1 - estReturn/100)
		}
		p.closeTrade(t, endTime, mark, strategy.ExitEndOfBacktest)
	}
}
