package storage

import (
	"time"

	"github.com/google/uuid"
)

// RunLog is a historical record of one pipeline run.
type RunLog struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	File        string    `json:"file"`
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

// RunStore implements persistence for run history.
type RunStore struct {
	db *DB
}

// NewRunStore creates a RunStore backed by db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun records one finished run.
func (s *RunStore) CreateRun(run *RunLog) error {
	run.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO sync_runs (id, started_at, finished_at, status, file, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Status, run.File, run.RowsRead, run.RowsWritten, run.Error,
	)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]RunLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, started_at, finished_at, status, file, rows_read, rows_written, error
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunLog
	for rows.Next() {
		var r RunLog
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.File, &r.RowsRead, &r.RowsWritten, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
