package persistence

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Remote that holds no record for a training.
var ErrNotFound = errors.New("session record not found")

// Record is the remote row of one training's board. StateData is the JSON
// encoded session state.
type Record struct {
	TrainingID string
	StateData  []byte
	UpdatedAt  time.Time
}

// Remote is the durable record-by-id store behind the gateway.
type Remote interface {
	Get(ctx context.Context, trainingID string) (Record, error)
	Upsert(ctx context.Context, rec Record) error
}

// Local is the in-process fallback tier. It outlives a failing remote but not
// the process.
type Local interface {
	Get(trainingID string) ([]byte, bool)
	Put(trainingID string, data []byte)
}
