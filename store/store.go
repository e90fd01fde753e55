package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Schema for the task audit table. sqlite and mysql both accept it.
const Schema = `
CREATE TABLE IF NOT EXISTS video_tasks (
    id          VARCHAR(64) PRIMARY KEY,
    params_json TEXT        NOT NULL,
    status      VARCHAR(32) NOT NULL,
    error_msg   TEXT        NULL,
    result_json TEXT        NULL,
    created_at  DATETIME    NOT NULL,
    started_at  DATETIME    NULL,
    finished_at DATETIME    NULL
);
`

// Record is the persisted representation of a task lifecycle.
type Record struct {
	ID         string
	ParamsJSON string
	Status     string
	ErrorMsg   *string
	ResultJSON *string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// SQLStore mirrors task lifecycle events into a relational database. It
// implements the orchestrator's Recorder contract.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Init creates the tasks table when it does not exist.
func (s *SQLStore) Init(ctx context.Context) error {
	if s.db == nil {
		return errors.New("nil db")
	}
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *SQLStore) TaskCreated(ctx context.Context, id, paramsJSON string) error {
	if s.db == nil {
		return errors.New("nil db")
	}
	q := `INSERT INTO video_tasks (id, params_json, status, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, id, paramsJSON, "pending", time.Now().UTC())
	return err
}

func (s *SQLStore) TaskStarted(ctx context.Context, id string) error {
	if s.db == nil {
		return errors.New("nil db")
	}
	q := `UPDATE video_tasks SET status = ?, started_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, "processing", time.Now().UTC(), id)
	return err
}

func (s *SQLStore) TaskCompleted(ctx context.Context, id, resultJSON string) error {
	if s.db == nil {
		return errors.New("nil db")
	}
	q := `UPDATE video_tasks SET status = ?, result_json = ?, finished_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, "completed", resultJSON, time.Now().UTC(), id)
	return err
}

func (s *SQLStore) TaskFailed(ctx context.Context, id, errorMsg string) error {
	if s.db == nil {
		return errors.New("nil db")
	}
	q := `UPDATE video_tasks SET status = ?, error_msg = ?, finished_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, "failed", errorMsg, time.Now().UTC(), id)
	return err
}

// GetByID loads one task record.
func (s *SQLStore) GetByID(ctx context.Context, id string) (*Record, error) {
	if s.db == nil {
		return nil, errors.New("nil db")
	}
	q := `SELECT id, params_json, status, error_msg, result_json, created_at, started_at, finished_at
		FROM video_tasks WHERE id = ?`
	row := s.db.QueryRowContext(ctx, q, id)

	var rec Record
	var errorMsg, resultJSON sql.NullString
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&rec.ID, &rec.ParamsJSON, &rec.Status, &errorMsg, &resultJSON, &rec.CreatedAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	if errorMsg.Valid {
		v := errorMsg.String
		rec.ErrorMsg = &v
	}
	if resultJSON.Valid {
		v := resultJSON.String
		rec.ResultJSON = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		rec.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		rec.FinishedAt = &t
	}
	return &rec, nil
}
