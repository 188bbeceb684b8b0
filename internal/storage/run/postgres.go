package run

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalystlab/catalyst/internal/core"
)

// runRow is the GORM row model for backtest runs.
type runRow struct {
	ID           string `gorm:"primaryKey"`
	StrategyID   string
	StrategyName string
	Status       string `gorm:"index"`
	Error        string
	StartDate    time.Time
	EndDate      time.Time

	InitialCapital float64
	FinalEquity    float64
	TotalReturnPct float64
	TotalTrades    int
	WinRatePct     float64
	MaxDrawdownPct float64
	SharpeRatio    *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (runRow) TableName() string { return "backtest_runs" }

// tradeRow is the GORM row model for per-run trade results.
type tradeRow struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	RunID        string `gorm:"index:idx_trade_results_run"`
	TradeID      int
	Ticker       string
	EventID      string
	Direction    string
	EntryDate    time.Time
	EntryPrice   float64
	ExitDate     time.Time
	ExitPrice    float64
	PositionSize float64
	PnL          float64
	PnLPct       float64
	ExitReason   string
	HoldingDays  int
}

func (tradeRow) TableName() string { return "backtest_trade_results" }

// PostgresStore persists runs to PostgreSQL via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the database and migrates the run tables.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if err := db.AutoMigrate(&runRow{}, &tradeRow{}); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing GORM connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateRun persists a new run and returns its ID.
func (p *PostgresStore) CreateRun(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusRunning
	}
	row := runRow{
		ID:             rec.ID,
		StrategyID:     rec.StrategyID,
		StrategyName:   rec.StrategyName,
		Status:         string(rec.Status),
		StartDate:      rec.StartDate,
		EndDate:        rec.EndDate,
		InitialCapital: rec.InitialCapital,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", core.WrapError(core.ErrStorageFailed, err)
	}
	return rec.ID, nil
}

// SaveTradeResult appends one trade row to a run.
func (p *PostgresStore) SaveTradeResult(ctx context.Context, runID string, tr TradeResult) error {
	row := tradeRow{
		RunID:        runID,
		TradeID:      tr.TradeID,
		Ticker:       tr.Ticker,
		EventID:      tr.EventID,
		Direction:    tr.Direction,
		EntryDate:    tr.EntryDate,
		EntryPrice:   tr.EntryPrice,
		ExitDate:     tr.ExitDate,
		ExitPrice:    tr.ExitPrice,
		PositionSize: tr.PositionSize,
		PnL:          tr.PnL,
		PnLPct:       tr.PnLPct,
		ExitReason:   tr.ExitReason,
		HoldingDays:  tr.HoldingDays,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// UpdateRun transitions the run status and writes summary fields.
func (p *PostgresStore) UpdateRun(ctx context.Context, runID string, status Status, errMsg string, summary *Summary) error {
	updates := map[string]any{
		"status": string(status),
		"error":  errMsg,
	}
	if summary != nil {
		updates["final_equity"] = summary.FinalEquity
		updates["total_return_pct"] = summary.TotalReturnPct
		updates["total_trades"] = summary.TotalTrades
		updates["win_rate_pct"] = summary.WinRatePct
		updates["max_drawdown_pct"] = summary.MaxDrawdownPct
		updates["sharpe_ratio"] = summary.SharpeRatio
	}

	res := p.db.WithContext(ctx).Model(&runRow{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return core.WrapError(core.ErrStorageFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (p *PostgresStore) GetRun(ctx context.Context, runID string) (*Record, error) {
	var row runRow
	err := p.db.WithContext(ctx).First(&row, "id = ?", runID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	rec := Record{
		ID:             row.ID,
		StrategyID:     row.StrategyID,
		StrategyName:   row.StrategyName,
		Status:         Status(row.Status),
		Error:          row.Error,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		InitialCapital: row.InitialCapital,
		FinalEquity:    row.FinalEquity,
		TotalReturnPct: row.TotalReturnPct,
		TotalTrades:    row.TotalTrades,
		WinRatePct:     row.WinRatePct,
		MaxDrawdownPct: row.MaxDrawdownPct,
		SharpeRatio:    row.SharpeRatio,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	return &rec, nil
}

// ListTradeResults returns trade rows ordered by trade ID.
func (p *PostgresStore) ListTradeResults(ctx context.Context, runID string) ([]TradeResult, error) {
	var rows []tradeRow
	err := p.db.WithContext(ctx).Where("run_id = ?", runID).Order("trade_id ASC").Find(&rows).Error
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	out := make([]TradeResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, TradeResult{
			RunID:        row.RunID,
			TradeID:      row.TradeID,
			Ticker:       row.Ticker,
			EventID:      row.EventID,
			Direction:    row.Direction,
			EntryDate:    row.EntryDate,
			EntryPrice:   row.EntryPrice,
			ExitDate:     row.ExitDate,
			ExitPrice:    row.ExitPrice,
			PositionSize: row.PositionSize,
			PnL:          row.PnL,
			PnLPct:       row.PnLPct,
			ExitReason:   row.ExitReason,
			HoldingDays:  row.HoldingDays,
		})
	}
	return out, nil
}
