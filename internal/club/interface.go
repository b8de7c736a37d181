package club

import (
	"context"

	"github.com/mauv0809/courtside/internal/session"
)

// ClubStore is the club's player directory plus the per-player game record.
type ClubStore interface {
	GetPlayer(ctx context.Context, playerID string) (session.Player, error)
	GetPlayers(ctx context.Context, playerIDs []string) ([]session.Player, error)
	ListPlayers(ctx context.Context, by SortBy) ([]session.Player, error)
	SearchPlayers(ctx context.Context, query string, limit int) ([]PlayerMatch, error)
	UpsertPlayer(ctx context.Context, player session.Player) error
	UpsertPlayers(ctx context.Context, players []session.Player) error
	RecordGameResult(ctx context.Context, gameID string, winnerIDs, loserIDs []string) error
	GetPlayerStats(ctx context.Context) ([]PlayerStats, error)
	Clear(ctx context.Context) error
}
