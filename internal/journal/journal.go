package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one row of the audit journal.
type Entry struct {
	ID             uint   `gorm:"primaryKey"`
	RequestID      string `gorm:"size:36;index"`
	Kind           string `gorm:"size:16;index"`
	Stock          string `gorm:"size:128;index"`
	Amount         int64
	Outcome        string `gorm:"size:16"`
	Message        string
	DurationMicros int64
	CreatedAt      time.Time
}

// TableName pins the table name used by AutoMigrate.
func (Entry) TableName() string {
	return "journal_entries"
}

// Journal appends completed transactions to a SQLite database. It is an
// audit trail only; nothing reads it back into the ledger.
type Journal struct {
	db *gorm.DB
}

// Open creates (or reuses) the SQLite database at path and migrates the
// journal table.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite allows a single writer; serialize through one connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("journal connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends rec to the journal.
func (j *Journal) Record(ctx context.Context, rec domain.TransactionRecord) error {
	e := Entry{
		RequestID:      rec.RequestID,
		Kind:           string(rec.Kind),
		Stock:          rec.Stock,
		Amount:         rec.Amount,
		Outcome:        rec.Outcome,
		Message:        rec.Message,
		DurationMicros: rec.Duration.Microseconds(),
		CreatedAt:      rec.CompletedAt,
	}
	if err := j.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
