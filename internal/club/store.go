package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/session"
)

var _ session.Directory = (ClubStore)(nil)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

const playerColumns = `id, first_name, last_name, rating, photo_url, external_profile_url`

func scanPlayer(scanner interface{ Scan(...any) error }) (session.Player, error) {
	var p session.Player
	err := scanner.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Rating, &p.PhotoURL, &p.ExternalProfileURL)
	return p, err
}

func (s *store) GetPlayer(ctx context.Context, playerID string) (session.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, playerID)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Player{}, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		log.Error("Failed to query player", "error", err, "playerID", playerID)
		return session.Player{}, fmt.Errorf("database error: %w", err)
	}
	return p, nil
}

// GetPlayers returns the players with the given ids. Unknown ids are skipped and
// the result is in no particular order.
func (s *store) GetPlayers(ctx context.Context, playerIDs []string) ([]session.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id IN (`+placeholders+`)`,
		ToAnySlice(playerIDs)...,
	)
	if err != nil {
		log.Error("Failed to query players", "error", err, "count", len(playerIDs))
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// ListPlayers returns every player, strongest first or alphabetically by last
// name.
func (s *store) ListPlayers(ctx context.Context, by SortBy) ([]session.Player, error) {
	var order string
	switch by {
	case SortByRating:
		order = `rating DESC, last_name COLLATE NOCASE, first_name COLLATE NOCASE`
	case SortByLastName:
		order = `last_name COLLATE NOCASE, first_name COLLATE NOCASE, id`
	default:
		return nil, fmt.Errorf("unknown sort order %q", by)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY `+order)
	if err != nil {
		log.Error("Failed to query all players", "error", err, "sort", by)
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

func collectPlayers(rows *sql.Rows) ([]session.Player, error) {
	var players []session.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SearchPlayers finds players whose name resembles query.
func (s *store) SearchPlayers(ctx context.Context, query string, limit int) ([]PlayerMatch, error) {
	players, err := s.ListPlayers(ctx, SortByLastName)
	if err != nil {
		return nil, err
	}
	return rankPlayers(query, players, limit), nil
}

func (s *store) UpsertPlayer(ctx context.Context, player session.Player) error {
	return s.UpsertPlayers(ctx, []session.Player{player})
}

// UpsertPlayers inserts new players and overwrites the profile of known ones.
// Negative ratings are stored as 0.
func (s *store) UpsertPlayers(ctx context.Context, players []session.Player) error {
	for _, p := range players {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("player id must not be empty")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			rating = excluded.rating,
			photo_url = excluded.photo_url,
			external_profile_url = excluded.external_profile_url;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		_, err := stmt.ExecContext(ctx, p.ID, p.FirstName, p.LastName, max(p.Rating, 0), p.PhotoURL, p.ExternalProfileURL)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Upserted players", "count", len(players))
	return nil
}

// RecordGameResult adds one game to the record of every listed player. Ids not
// in the directory are ignored. A game id that was already recorded is a no-op,
// so redelivered results are counted once. An empty id is always recorded.
func (s *store) RecordGameResult(ctx context.Context, gameID string, winnerIDs, loserIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if gameID != "" {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO game_results (id) VALUES (?);`, gameID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to register game %s: %w", gameID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return err
		}
		if n == 0 {
			tx.Rollback()
			log.Info("Game result already recorded, skipping", "game_id", gameID)
			return nil
		}
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_stats (player_id, games_played, games_won, games_lost)
		SELECT id, 1, ?, ? FROM players WHERE id = ?
		ON CONFLICT(player_id) DO UPDATE SET
			games_played = games_played + 1,
			games_won = games_won + excluded.games_won,
			games_lost = games_lost + excluded.games_lost;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	record := func(ids []string, won, lost int) error {
		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, won, lost, id); err != nil {
				return fmt.Errorf("failed to record game for player %s: %w", id, err)
			}
		}
		return nil
	}
	if err := record(winnerIDs, 1, 0); err != nil {
		tx.Rollback()
		return err
	}
	if err := record(loserIDs, 0, 1); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit player_stats transaction", "error", err)
		return err
	}
	log.Debug("Recorded game result", "game_id", gameID, "winners", winnerIDs, "losers", loserIDs)
	return nil
}

// GetPlayerStats returns the leaderboard: players with at least one game, most
// wins first.
func (s *store) GetPlayerStats(ctx context.Context) ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.id,
			p.first_name,
			p.last_name,
			p.rating,
			ps.games_played,
			ps.games_won,
			ps.games_lost
		FROM player_stats ps
		JOIN players p ON ps.player_id = p.id
		ORDER BY ps.games_won DESC, ps.games_lost ASC, p.last_name COLLATE NOCASE;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		var (
			stat PlayerStats
			p    session.Player
		)
		err := rows.Scan(&stat.PlayerID, &p.FirstName, &p.LastName, &stat.Rating, &stat.GamesPlayed, &stat.GamesWon, &stat.GamesLost)
		if err != nil {
			return nil, err
		}
		stat.PlayerName = p.DisplayName()
		if stat.GamesPlayed > 0 {
			stat.WinPercentage = (float64(stat.GamesWon) / float64(stat.GamesPlayed)) * 100
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// Clear removes every player and their record.
func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, table := range []string{"game_results", "player_stats", "players"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
