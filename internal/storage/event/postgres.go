// internal/storage/event/postgres.go
package event

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalystlab/catalyst/internal/core"
)

// Record is the GORM row model for the events table.
type Record struct {
	ID                string    `gorm:"primaryKey;column:id"`
	Ticker            string    `gorm:"column:ticker;index:idx_events_ticker"`
	Date              time.Time `gorm:"column:date;index:idx_events_date"`
	EventType         string    `gorm:"column:event_type"`
	Sector            string    `gorm:"column:sector"`
	ImpactScore       float64   `gorm:"column:impact_score"`
	MLAdjustedScore   *float64  `gorm:"column:ml_adjusted_score"`
	Direction         string    `gorm:"column:direction"`
	Confidence        float64   `gorm:"column:confidence"`
	MLConfidence      *float64  `gorm:"column:ml_confidence"`
	BearishSignal     bool      `gorm:"column:bearish_signal"`
	BearishScore      *float64  `gorm:"column:bearish_score"`
	HiddenBearishProb *float64  `gorm:"column:hidden_bearish_prob"`
}

// TableName sets the table name for GORM.
func (Record) TableName() string { return "events" }

// PostgresStore loads events from PostgreSQL via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the database and migrates the events table.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing GORM connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) query(ctx context.Context, filter Filter) *gorm.DB {
	q := p.db.WithContext(ctx).Model(&Record{})
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}
	if len(filter.Tickers) > 0 {
		q = q.Where("ticker IN ?", filter.Tickers)
	}
	if len(filter.Sectors) > 0 {
		q = q.Where("sector IN ?", filter.Sectors)
	}
	if filter.MinScore != nil {
		q = q.Where("COALESCE(ml_adjusted_score, impact_score) >= ?", *filter.MinScore)
	}
	return q
}

// Load returns events matching the filter ordered by date ascending.
func (p *PostgresStore) Load(ctx context.Context, filter Filter) ([]core.Event, error) {
	var rows []Record
	if err := p.query(ctx, filter).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	events := make([]core.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

// Count returns the count of matching events.
func (p *PostgresStore) Count(ctx context.Context, filter Filter) (int, error) {
	var count int64
	if err := p.query(ctx, filter).Count(&count).Error; err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, err)
	}
	return int(count), nil
}

// Save persists events; existing IDs are left untouched.
func (p *PostgresStore) Save(ctx context.Context, events ...core.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]Record, 0, len(events))
	for _, ev := range events {
		rows = append(rows, fromEvent(ev))
	}
	if err := p.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func (r Record) toEvent() core.Event {
	return core.Event{
		ID:                r.ID,
		Ticker:            r.Ticker,
		Date:              r.Date,
		EventType:         core.EventType(r.EventType),
		Sector:            r.Sector,
		ImpactScore:       r.ImpactScore,
		MLAdjustedScore:   r.MLAdjustedScore,
		Direction:         core.Direction(r.Direction),
		Confidence:        r.Confidence,
		MLConfidence:      r.MLConfidence,
		BearishSignal:     r.BearishSignal,
		BearishScore:      r.BearishScore,
		HiddenBearishProb: r.HiddenBearishProb,
	}
}

func fromEvent(ev core.Event) Record {
	return Record{
		ID:                ev.ID,
		Ticker:            ev.Ticker,
		Date:              ev.Date,
		EventType:         string(ev.EventType),
		Sector:            ev.Sector,
		ImpactScore:       ev.ImpactScore,
		MLAdjustedScore:   ev.MLAdjustedScore,
		Direction:         string(ev.Direction),
		Confidence:        ev.Confidence,
		MLConfidence:      ev.MLConfidence,
		BearishSignal:     ev.BearishSignal,
		BearishScore:      ev.BearishScore,
		HiddenBearishProb: ev.HiddenBearishProb,
	}
}
