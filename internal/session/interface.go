package session

import (
	"context"
	"time"
)

// Store persists session state. Load returns nil, nil when nothing has been
// saved for the session. Save reports degraded when the state only reached a
// fallback tier.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state State) (degraded bool, err error)
}

// Directory resolves player records. GetPlayers silently omits ids it cannot
// resolve.
type Directory interface {
	GetPlayer(ctx context.Context, playerID string) (Player, error)
	GetPlayers(ctx context.Context, playerIDs []string) ([]Player, error)
}

// TickFunc receives the elapsed time of a running game once per timer tick.
type TickFunc func(courtID int, elapsed time.Duration)
