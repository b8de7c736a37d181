package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqlRemote keeps session records in the court_sessions table.
type sqlRemote struct {
	db *sql.DB
}

// NewSQLRemote creates a Remote backed by db.
func NewSQLRemote(db *sql.DB) Remote {
	return &sqlRemote{db: db}
}

func (s *sqlRemote) Get(ctx context.Context, trainingID string) (Record, error) {
	var (
		data    string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state_data, updated_at FROM court_sessions WHERE training_id = ?`,
		trainingID,
	).Scan(&data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to fetch session %s: %w", trainingID, err)
	}
	return Record{
		TrainingID: trainingID,
		StateData:  []byte(data),
		UpdatedAt:  time.UnixMilli(updated).UTC(),
	}, nil
}

func (s *sqlRemote) Upsert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO court_sessions (training_id, state_data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(training_id) DO UPDATE SET
			state_data = excluded.state_data,
			updated_at = excluded.updated_at
	`, rec.TrainingID, string(rec.StateData), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", rec.TrainingID, err)
	}
	return nil
}
