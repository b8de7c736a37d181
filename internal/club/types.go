package club

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrPlayerNotFound is returned when a player id is not in the directory.
var ErrPlayerNotFound = errors.New("player not found")

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SortBy selects the order of ListPlayers.
type SortBy string

const (
	// SortByRating lists the strongest players first.
	SortByRating SortBy = "rating"
	// SortByLastName lists players alphabetically by last name.
	SortByLastName SortBy = "name"
)

// ParseSortBy converts a query value into a SortBy. An empty value means
// SortByRating.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortByRating:
		return SortByRating, nil
	case SortByLastName:
		return SortByLastName, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// PlayerStats represents a player's game record for the leaderboard.
type PlayerStats struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	Rating        int     `json:"rating"`
	GamesPlayed   int     `json:"games_played"`
	GamesWon      int     `json:"games_won"`
	GamesLost     int     `json:"games_lost"`
	WinPercentage float64 `json:"win_percentage"`
}
