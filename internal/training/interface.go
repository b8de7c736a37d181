package training

import (
	"context"
	"time"
)

// TrainingStore keeps the trainings a board can be opened for.
type TrainingStore interface {
	// Create stores a new training with a generated id.
	Create(ctx context.Context, title string, startsAt time.Time, courtCount int, playerIDs []string) (*Training, error)

	// Get returns a training by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Training, error)

	// List returns all trainings, latest start first.
	List(ctx context.Context) ([]Training, error)

	// SetPlayers replaces the ordered player list of a training.
	SetPlayers(ctx context.Context, id string, playerIDs []string) error
}
