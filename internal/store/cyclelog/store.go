// Package cyclelog keeps a history of cycle outcomes for the status API:
// action counts, duration, and the (capped) error digest of every run.
package cyclelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type CycleModel struct {
	ID         int64          `gorm:"column:id;primaryKey"`
	StartedAt  int64          `gorm:"column:started_at;index"`
	DurationMS int64          `gorm:"column:duration_ms"`
	Buys       int            `gorm:"column:buys"`
	Sells      int            `gorm:"column:sells"`
	Holds      int            `gorm:"column:holds"`
	Tokens     int            `gorm:"column:tokens"`
	Aborted    bool           `gorm:"column:aborted"`
	Errors     datatypes.JSON `gorm:"column:errors;type:TEXT"`
}

func (CycleModel) TableName() string { return "cycles" }

// Entry is the API-facing shape of one cycle row.
type Entry struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Buys      int       `json:"buys"`
	Sells     int       `json:"sells"`
	Holds     int       `json:"holds"`
	Tokens    int       `json:"tokens"`
	Aborted   bool      `json:"aborted"`
	Errors    []string  `json:"errors,omitempty"`
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("cycle log path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open cycle log db: %w", err)
	}
	if err := db.AutoMigrate(&CycleModel{}); err != nil {
		return nil, fmt.Errorf("migrate cycle log: %w", err)
	}
	return &Store{db: db}, nil
}

// Append stores one finished cycle.
func (s *Store) Append(startedAt time.Time, duration time.Duration, buys, sells, holds, tokens int, aborted bool, errs []string) error {
	blob, err := json.Marshal(errs)
	if err != nil {
		return err
	}
	row := CycleModel{
		StartedAt:  startedAt.Unix(),
		DurationMS: duration.Milliseconds(),
		Buys:       buys,
		Sells:      sells,
		Holds:      holds,
		Tokens:     tokens,
		Aborted:    aborted,
		Errors:     datatypes.JSON(blob),
	}
	return s.db.Create(&row).Error
}

// Recent returns up to limit cycles, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []CycleModel
	if err := s.db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			ID:        r.ID,
			StartedAt: time.Unix(r.StartedAt, 0),
			Duration:  (time.Duration(r.DurationMS) * time.Millisecond).String(),
			Buys:      r.Buys,
			Sells:     r.Sells,
			Holds:     r.Holds,
			Tokens:    r.Tokens,
			Aborted:   r.Aborted,
		}
		if len(r.Errors) > 0 {
			_ = json.Unmarshal(r.Errors, &e.Errors)
		}
		out = append(out, e)
	}
	return out, nil
}
