package pricing

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalystlab/catalyst/internal/core"
)

// priceRow is the GORM row model for the daily_prices table.
type priceRow struct {
	Ticker string    `gorm:"column:ticker;primaryKey"`
	Date   time.Time `gorm:"column:date;primaryKey"`
	Close  float64   `gorm:"column:close"`
}

func (priceRow) TableName() string { return "daily_prices" }

// PostgresSource serves daily closes from PostgreSQL via GORM.
type PostgresSource struct {
	db *gorm.DB
}

// OpenPostgres connects to the database and migrates the prices table.
func OpenPostgres(dsn string) (*PostgresSource, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if err := db.AutoMigrate(&priceRow{}); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &PostgresSource{db: db}, nil
}

// NewPostgresSource wraps an existing GORM connection.
func NewPostgresSource(db *gorm.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// GetClose returns the first close on or after the given date.
func (p *PostgresSource) GetClose(ctx context.Context, ticker string, onOrAfter time.Time) (float64, error) {
	var row priceRow
	err := p.db.WithContext(ctx).
		Where("ticker = ? AND date >= ?", ticker, onOrAfter).
		Order("date ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, core.ErrNoData
		}
		return 0, core.WrapError(core.ErrStorageFailed, err)
	}
	return row.Close, nil
}

// SaveBars upserts daily closes, used by data loaders and tests.
func (p *PostgresSource) SaveBars(ctx context.Context, ticker string, bars ...Bar) error {
	if len(bars) == 0 {
		return nil
	}
	rows := make([]priceRow, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, priceRow{Ticker: ticker, Date: b.Date, Close: b.Close})
	}
	if err := p.db.WithContext(ctx).Save(&rows).Error; err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}
