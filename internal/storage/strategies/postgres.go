package strategies

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalystlab/catalyst/internal/core"
)

// strategyRow is the GORM row model for user strategies.
type strategyRow struct {
	ID                string `gorm:"primaryKey"`
	Name              string
	Description       string
	EntryConditions   []byte `gorm:"type:jsonb"`
	ExitConditions    []byte `gorm:"type:jsonb"`
	PositionSizing    []byte `gorm:"type:jsonb"`
	Tickers           []byte `gorm:"type:jsonb"`
	Sectors           []byte `gorm:"type:jsonb"`
	MinScoreThreshold *float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (strategyRow) TableName() string { return "user_strategies" }

// PostgresStore loads stored strategies from PostgreSQL via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the database and migrates the table.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if err := db.AutoMigrate(&strategyRow{}); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing GORM connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadStrategy retrieves a stored strategy by ID.
func (p *PostgresStore) LoadStrategy(ctx context.Context, id string) (*Stored, error) {
	var row strategyRow
	err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, core.ErrStrategyNotFound
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	s := Stored{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		EntryConditions:   row.EntryConditions,
		ExitConditions:    row.ExitConditions,
		PositionSizing:    row.PositionSizing,
		MinScoreThreshold: row.MinScoreThreshold,
	}
	// Ticker/sector lists are stored as JSON arrays; a corrupt list is
	// treated as no restriction, matching the permissive load contract.
	if len(row.Tickers) > 0 {
		_ = json.Unmarshal(row.Tickers, &s.Tickers)
	}
	if len(row.Sectors) > 0 {
		_ = json.Unmarshal(row.Sectors, &s.Sectors)
	}
	return &s, nil
}

// SaveStrategy upserts a stored strategy. Used by fixtures and tools;
// the web layer that authors strategies lives outside this repo.
func (p *PostgresStore) SaveStrategy(ctx context.Context, s Stored) error {
	tickers, _ := json.Marshal(s.Tickers)
	sectors, _ := json.Marshal(s.Sectors)
	row := strategyRow{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		EntryConditions:   s.EntryConditions,
		ExitConditions:    s.ExitConditions,
		PositionSizing:    s.PositionSizing,
		Tickers:           tickers,
		Sectors:           sectors,
		MinScoreThreshold: s.MinScoreThreshold,
	}
	if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}
