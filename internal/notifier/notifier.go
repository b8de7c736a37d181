package notifier

import (
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/session"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For finished games
	SendGameResult(game session.FinishedGame, dryRun bool) error
	// For saves that only reached the local fallback store
	SendPersistenceWarning(sessionID string, dryRun bool) error
	// For slash commands
	SendLeaderboard(stats []club.PlayerStats, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(stats []club.PlayerStats) (any, error)
}
