// Package run persists backtest run records and their per-trade
// result rows. A run is created in the running state before
// simulation starts and must always end completed or failed; it is
// never left running after the engine call returns.
package run

import (
	"context"
	"time"
)

// Status represents run status.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is one backtest run.
type Record struct {
	ID           string    `json:"id"`
	StrategyID   string    `json:"strategy_id,omitempty"`
	StrategyName string    `json:"strategy_name"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`

	InitialCapital float64  `json:"initial_capital"`
	FinalEquity    float64  `json:"final_equity"`
	TotalReturnPct float64  `json:"total_return_pct"`
	TotalTrades    int      `json:"total_trades"`
	WinRatePct     float64  `json:"win_rate_pct"`
	MaxDrawdownPct float64  `json:"max_drawdown_pct"`
	SharpeRatio    *float64 `json:"sharpe_ratio,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary carries the metric fields written back onto a completed run.
type Summary struct {
	FinalEquity    float64
	TotalReturnPct float64
	TotalTrades    int
	WinRatePct     float64
	MaxDrawdownPct float64
	SharpeRatio    *float64
}

// TradeResult is one persisted trade row of a run.
type TradeResult struct {
	RunID        string    `json:"run_id"`
	TradeID      int       `json:"trade_id"`
	Ticker       string    `json:"ticker"`
	EventID      string    `json:"event_id"`
	Direction    string    `json:"direction"`
	EntryDate    time.Time `json:"entry_date"`
	EntryPrice   float64   `json:"entry_price"`
	ExitDate     time.Time `json:"exit_date"`
	ExitPrice    float64   `json:"exit_price"`
	PositionSize float64   `json:"position_size"`
	PnL          float64   `json:"pnl_dollars"`
	PnLPct       float64   `json:"pnl_percent"`
	ExitReason   string    `json:"exit_reason"`
	HoldingDays  int       `json:"holding_days"`
}

// Store defines the interface for run persistence.
type Store interface {
	// CreateRun persists a new run and returns its assigned ID.
	CreateRun(ctx context.Context, rec Record) (string, error)

	// SaveTradeResult appends one trade row to a run.
	SaveTradeResult(ctx context.Context, runID string, tr TradeResult) error

	// UpdateRun transitions a run's status, attaching the failure
	// message or the completed summary.
	UpdateRun(ctx context.Context, runID string, status Status, errMsg string, summary *Summary) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*Record, error)

	// ListTradeResults returns the trade rows of a run ordered by trade ID.
	ListTradeResults(ctx context.Context, runID string) ([]TradeResult, error)
}
