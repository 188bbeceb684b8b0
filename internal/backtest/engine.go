package backtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/catalystlab/catalyst/internal/core"
	"github.com/catalystlab/catalyst/internal/metrics"
	"github.com/catalystlab/catalyst/internal/pricing"
	"github.com/catalystlab/catalyst/internal/social"
	"github.com/catalystlab/catalyst/internal/storage/archive"
	"github.com/catalystlab/catalyst/internal/storage/event"
	"github.com/catalystlab/catalyst/internal/storage/run"
	"github.com/catalystlab/catalyst/internal/storage/strategies"
	"github.com/catalystlab/catalyst/internal/strategy"
)

// Backtest windows are capped to bound worst-case event volume.
const maxBacktestYears = 10

// DefaultInitialCapital is used when no capital is configured.
const DefaultInitialCapital = 100_000

// Engine orchestrates a backtest end to end: loading and filtering
// events, resolving prices, driving the simulator and packaging the
// metric report. Collaborator stores are injected; the price cache is
// scoped to one RunBacktest call, so engines are safe to share across
// goroutines.
type Engine struct {
	events         event.Store
	prices         pricing.Source
	social         social.Source
	runs           run.Store
	strategies     strategies.Store
	archive        archive.Storage
	registry       *metrics.Registry
	logger         *zap.Logger
	initialCapital float64
	now            func() time.Time
}

// Options carries the optional collaborators of an Engine.
type Options struct {
	Social         social.Source
	Runs           run.Store
	Strategies     strategies.Store
	Archive        archive.Storage
	Metrics        *metrics.Registry
	Logger         *zap.Logger
	InitialCapital float64
}

// NewEngine creates an engine over the given event store and price
// source.
func NewEngine(events event.Store, prices pricing.Source, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	capital := opts.InitialCapital
	if capital <= 0 {
		capital = DefaultInitialCapital
	}
	return &Engine{
		events:         events,
		prices:         prices,
		social:         opts.Social,
		runs:           opts.Runs,
		strategies:     opts.Strategies,
		archive:        opts.Archive,
		registry:       opts.Metrics,
		logger:         logger,
		initialCapital: capital,
		now:            time.Now,
	}
}

// RunParams are the inputs of one backtest run. Ticker and sector
// lists fall back to the strategy's own universe filters when empty.
type RunParams struct {
	Strategy *strategy.Definition
	Start    time.Time
	End      time.Time
	Tickers  []string
	Sectors  []string
	MinScore *float64
}

func (e *Engine) validate(params RunParams) error {
	if params.Strategy == nil || params.Strategy.Name == "" {
		return core.WrapError(core.ErrStrategyInvalid, errors.New("strategy name required"))
	}
	if !params.Start.Before(params.End) {
		return core.WrapError(core.ErrInvalidRange, errors.New("start date must be before end date"))
	}
	if params.End.After(params.Start.AddDate(maxBacktestYears, 0, 0)) {
		return core.WrapError(core.ErrInvalidRange,
			fmt.Errorf("backtest period exceeds %d years", maxBacktestYears))
	}
	if params.End.After(e.now()) {
		return core.WrapError(core.ErrInvalidRange, errors.New("end date cannot be in the future"))
	}
	return nil
}

// RunBacktest validates parameters, loads and prices the matching
// events, replays them through a fresh simulator, and packages the
// metric report. A window with zero matching events yields a
// well-defined empty result rather than an error; individual events
// whose at-event price cannot be resolved are skipped and counted.
func (e *Engine) RunBacktest(ctx context.Context, params RunParams) (*Result, error) {
	started := e.now()

	if err := e.validate(params); err != nil {
		e.record("invalid", started)
		return nil, err
	}

	sectors := params.Sectors
	if len(sectors) == 0 {
		sectors = params.Strategy.AllowedSectors
	}

	loaded, err := e.events.Load(ctx, event.Filter{
		From:     params.Start,
		To:       params.End,
		Tickers:  params.Tickers,
		Sectors:  sectors,
		MinScore: params.MinScore,
	})
	if err != nil {
		e.record("error", started)
		return nil, err
	}

	cache := pricing.NewCache(e.prices)
	eventData := make([]core.EventData, 0, len(loaded))
	for _, ev := range loaded {
		data, ok := e.toEventData(ctx, cache, ev)
		if !ok {
			continue
		}
		eventData = append(eventData, data)
	}

	result := &Result{
		Strategy:        params.Strategy,
		StartDate:       params.Start,
		EndDate:         params.End,
		InitialCapital:  e.initialCapital,
		EventsProcessed: len(loaded),
		EventsMatched:   len(eventData),
	}

	if len(eventData) == 0 {
		e.logger.Info("no events matched backtest filters",
			zap.String("strategy", params.Strategy.Name),
			zap.Time("start", params.Start),
			zap.Time("end", params.End),
		)
		result.FinalEquity = e.initialCapital
		result.EquityCurve = []EquityPoint{{Time: params.Start, Equity: e.initialCapital}}
		result.Metrics = CalculateMetrics(NewPortfolio(e.initialCapital))
		e.record("empty", started)
		return result, nil
	}

	sim := NewSimulator(params.Strategy, e.logger)
	portfolio, err := sim.Run(ctx, e.initialCapital, eventData)
	if err != nil {
		e.record("error", started)
		return nil, err
	}

	result.Metrics = CalculateMetrics(portfolio)
	result.Trades = portfolio.Closed
	result.EquityCurve = portfolio.EquityCurve
	result.FinalEquity = portfolio.CurrentEquity()

	if e.registry != nil {
		e.registry.RecordEvents(result.EventsProcessed, result.EventsMatched)
		e.registry.RecordTrades(result.Metrics.TotalTrades)
	}
	e.record("completed", started)

	e.logger.Info("backtest completed",
		zap.String("strategy", params.Strategy.Name),
		zap.Int("events_matched", result.EventsMatched),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("total_return_pct", result.Metrics.TotalReturnPct),
	)
	return result, nil
}

// toEventData resolves the price snapshots for one event. An event
// with no resolvable or non-positive at-event price is skipped; the
// horizon prices are each independently optional.
func (e *Engine) toEventData(ctx context.Context, cache *pricing.Cache, ev core.Event) (core.EventData, bool) {
	atEvent, err := cache.GetClose(ctx, ev.Ticker, ev.Date)
	if err != nil || atEvent <= 0 {
		if err != nil && !errors.Is(err, core.ErrNoData) {
			e.logger.Warn("price lookup failed, skipping event",
				zap.String("event_id", ev.ID),
				zap.String("ticker", ev.Ticker),
				zap.Error(err),
			)
		} else {
			e.logger.Debug("no price at event date, skipping event",
				zap.String("event_id", ev.ID),
				zap.String("ticker", ev.Ticker),
			)
		}
		if e.registry != nil {
			e.registry.RecordPriceLookup("miss")
		}
		return core.EventData{}, false
	}
	if e.registry != nil {
		e.registry.RecordPriceLookup("hit")
	}

	data := core.EventData{
		EventID:           ev.ID,
		Ticker:            ev.Ticker,
		Timestamp:         ev.Date,
		EventType:         ev.EventType,
		Sector:            ev.Sector,
		ImpactScore:       ev.ImpactScore,
		MLAdjustedScore:   ev.MLAdjustedScore,
		Direction:         ev.Direction,
		Confidence:        ev.Confidence,
		MLConfidence:      ev.MLConfidence,
		BearishSignal:     ev.BearishSignal,
		BearishScore:      ev.BearishScore,
		HiddenBearishProb: ev.HiddenBearishProb,
		PriceAtEvent:      &atEvent,
	}

	data.Price1D = e.horizonPrice(ctx, cache, ev.Ticker, ev.Date.AddDate(0, 0, 1))
	data.Price5D = e.horizonPrice(ctx, cache, ev.Ticker, ev.Date.AddDate(0, 0, 5))
	data.Price20D = e.horizonPrice(ctx, cache, ev.Ticker, ev.Date.AddDate(0, 0, 20))

	if e.social != nil {
		sig, err := e.social.GetSignal(ctx, ev.ID)
		if err == nil && sig != nil {
			data.Social = sig
		}
	}
	return data, true
}

func (e *Engine) horizonPrice(ctx context.Context, cache *pricing.Cache, ticker string, date time.Time) *float64 {
	price, err := cache.GetClose(ctx, ticker, date)
	if err != nil || price <= 0 {
		return nil
	}
	return &price
}

// RunFromStoredStrategy executes a persisted strategy with full run
// bookkeeping: a run record is created in the running state, and the
// call always leaves it completed or failed, never running. Failures
// are recorded on the run and re-raised to the caller.
func (e *Engine) RunFromStoredStrategy(ctx context.Context, strategyID string, start, end time.Time) (*Result, string, error) {
	if e.strategies == nil || e.runs == nil {
		return nil, "", core.WrapError(core.ErrConfigMissing,
			errors.New("strategy and run stores required for persisted runs"))
	}

	stored, err := e.strategies.LoadStrategy(ctx, strategyID)
	if err != nil {
		return nil, "", err
	}

	def, degraded := strategy.FromStored(stored.Name, stored.Description,
		stored.EntryConditions, stored.ExitConditions, stored.PositionSizing)
	for _, dErr := range degraded {
		e.logger.Warn("stored strategy field malformed, using permissive default",
			zap.String("strategy_id", strategyID),
			zap.Error(dErr),
		)
	}

	runID, err := e.runs.CreateRun(ctx, run.Record{
		StrategyID:     strategyID,
		StrategyName:   def.Name,
		Status:         run.StatusRunning,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: e.initialCapital,
	})
	if err != nil {
		return nil, "", err
	}

	result, err := e.RunBacktest(ctx, RunParams{
		Strategy: def,
		Start:    start,
		End:      end,
		Tickers:  stored.Tickers,
		Sectors:  stored.Sectors,
		MinScore: stored.MinScoreThreshold,
	})
	if err != nil {
		if updErr := e.runs.UpdateRun(ctx, runID, run.StatusFailed, err.Error(), nil); updErr != nil {
			e.logger.Error("failed to mark run as failed",
				zap.String("run_id", runID),
				zap.Error(updErr),
			)
		}
		return nil, runID, err
	}

	if err := e.persistResult(ctx, runID, result); err != nil {
		if updErr := e.runs.UpdateRun(ctx, runID, run.StatusFailed, err.Error(), nil); updErr != nil {
			e.logger.Error("failed to mark run as failed",
				zap.String("run_id", runID),
				zap.Error(updErr),
			)
		}
		return nil, runID, err
	}

	e.archiveResult(ctx, runID, result)
	return result, runID, nil
}

// persistResult writes trade rows and the completed summary.
func (e *Engine) persistResult(ctx context.Context, runID string, result *Result) error {
	for _, t := range result.Trades {
		tr := run.TradeResult{
			TradeID:      t.ID,
			Ticker:       t.Ticker,
			EventID:      t.EventID,
			Direction:    string(t.Direction),
			EntryDate:    t.EntryDate,
			EntryPrice:   t.EntryPrice,
			ExitDate:     t.ExitDate,
			ExitPrice:    t.ExitPrice,
			PositionSize: t.PositionSize,
			PnL:          t.PnL,
			PnLPct:       t.PnLPct,
			ExitReason:   t.ExitReason,
			HoldingDays:  t.HoldingDays(),
		}
		if err := e.runs.SaveTradeResult(ctx, runID, tr); err != nil {
			return err
		}
	}

	m := result.Metrics
	return e.runs.UpdateRun(ctx, runID, run.StatusCompleted, "", &run.Summary{
		FinalEquity:    result.FinalEquity,
		TotalReturnPct: m.TotalReturnPct,
		TotalTrades:    m.TotalTrades,
		WinRatePct:     m.WinRatePct,
		MaxDrawdownPct: m.MaxDrawdownPct,
		SharpeRatio:    m.SharpeRatio,
	})
}

// archiveResult cold-stores the result document. Best effort: archive
// failures are logged, never surfaced.
func (e *Engine) archiveResult(ctx context.Context, runID string, result *Result) {
	if e.archive == nil {
		return
	}
	doc, err := json.Marshal(result.ToMap())
	if err != nil {
		e.logger.Warn("result serialization for archive failed",
			zap.String("run_id", runID), zap.Error(err))
		return
	}
	if err := e.archive.Put(ctx, archive.ResultKey(runID), doc); err != nil {
		e.logger.Warn("result archive write failed",
			zap.String("run_id", runID), zap.Error(err))
	}
}

func (e *Engine) record(status string, started time.Time) {
	if e.registry == nil {
		return
	}
	e.registry.RecordBacktest(status, e.now().Sub(started).Seconds())
}
