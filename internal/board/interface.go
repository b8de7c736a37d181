package board

import (
	"context"

	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/training"
)

// Trainings resolves the training a board is opened for.
type Trainings interface {
	Get(ctx context.Context, id string) (*training.Training, error)
}

// Stats records finished games for the leaderboard.
type Stats interface {
	RecordGameResult(ctx context.Context, gameID string, winnerIDs, loserIDs []string) error
}

// Notifier defines the notification operations required by the board.
type Notifier interface {
	notifier.Notifier
}
