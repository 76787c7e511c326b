// Package joblog persists one row per upstream query: the prompt, the job
// ID, the raw response and any failure text. It exists purely for
// diagnostics; nothing on the trading path reads it back.
package joblog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	mu sync.Mutex
	db *sql.DB
}

type Record struct {
	ID        int64  `json:"id"`
	Timestamp int64  `json:"ts"`
	Kind      string `json:"kind"`
	JobID     string `json:"job_id"`
	Prompt    string `json:"prompt"`
	Raw       string `json:"raw"`
	Error     string `json:"error,omitempty"`
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("open job log db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS job_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts INTEGER NOT NULL,
		kind TEXT NOT NULL,
		job_id TEXT,
		prompt TEXT,
		raw TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_job_log_ts ON job_log(ts);`)
	if err != nil {
		return fmt.Errorf("migrate job log: %w", err)
	}
	return nil
}

// RecordJob implements bankr.Recorder. A transcript write must never
// interfere with a trading cycle, so insert failures are dropped.
func (s *Store) RecordJob(kind, jobID, prompt, raw, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.db.Exec(
		`INSERT INTO job_log (ts, kind, job_id, prompt, raw, error) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), kind, jobID, prompt, raw, errText,
	)
}

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(
		`SELECT id, ts, kind, job_id, prompt, raw, error FROM job_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		// job_id, prompt, raw and error are nullable in the schema.
		var jobID, prompt, raw, errText sql.NullString
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Kind, &jobID, &prompt, &raw, &errText); err != nil {
			return nil, err
		}
		r.JobID = jobID.String
		r.Prompt = prompt.String
		r.Raw = raw.String
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
