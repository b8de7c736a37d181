package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// store handles database operations for trainings.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new training store.
func NewStore(db *sql.DB) TrainingStore {
	return &store{
		db: db,
	}
}

func (s *store) Create(ctx context.Context, title string, startsAt time.Time, courtCount int, playerIDs []string) (*Training, error) {
	if courtCount < 1 {
		return nil, fmt.Errorf("court count %d: %w", courtCount, ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Training{
		ID:         uuid.New().String(),
		Title:      title,
		StartsAt:   startsAt.UTC(),
		CourtCount: courtCount,
		PlayerIDs:  uniqueIDs(playerIDs),
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO trainings (id, title, court_count, starts_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.CourtCount, t.StartsAt.Unix(), t.CreatedAt.Unix())
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create training: %w", err)
	}
	if err := insertPlayers(ctx, tx, t.ID, t.PlayerIDs); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Created training", "id", t.ID, "title", t.Title, "courts", t.CourtCount, "players", len(t.PlayerIDs))
	return t, nil
}

func insertPlayers(ctx context.Context, tx *sql.Tx, trainingID string, playerIDs []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO training_players (training_id, player_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, id := range playerIDs {
		if _, err := stmt.ExecContext(ctx, trainingID, id, i); err != nil {
			return fmt.Errorf("failed to add player %s to training %s: %w", id, trainingID, err)
		}
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Training, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		t                 Training
		startsAt, created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, court_count, starts_at, created_at
		FROM trainings
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.CourtCount, &startsAt, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("training %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training: %w", err)
	}
	t.StartsAt = time.Unix(startsAt, 0).UTC()
	t.CreatedAt = time.Unix(created, 0).UTC()

	t.PlayerIDs, err = s.playerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *store) playerIDs(ctx context.Context, trainingID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id FROM training_players
		WHERE training_id = ?
		ORDER BY position
	`, trainingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players of training %s: %w", trainingID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *store) List(ctx context.Context) ([]Training, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, court_count, starts_at, created_at
		FROM trainings
		ORDER BY starts_at DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}

	var trainings []Training
	for rows.Next() {
		var (
			t                 Training
			startsAt, created int64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.CourtCount, &startsAt, &created); err != nil {
			log.Error("Failed to scan training row", "error", err)
			continue
		}
		t.StartsAt = time.Unix(startsAt, 0).UTC()
		t.CreatedAt = time.Unix(created, 0).UTC()
		trainings = append(trainings, t)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Player lists are read after the listing is closed; a single-connection
	// database cannot serve both at once.
	for i := range trainings {
		trainings[i].PlayerIDs, err = s.playerIDs(ctx, trainings[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return trainings, nil
}

func (s *store) SetPlayers(ctx context.Context, id string, playerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM trainings WHERE id = ?`, id).Scan(&exists); err != nil {
		tx.Rollback()
		return err
	}
	if exists == 0 {
		tx.Rollback()
		return fmt.Errorf("training %s: %w", id, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM training_players WHERE training_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	ids := uniqueIDs(playerIDs)
	if err := insertPlayers(ctx, tx, id, ids); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Updated training players", "id", id, "players", len(ids))
	return nil
}
