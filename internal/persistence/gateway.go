package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/vmihailenco/msgpack/v5"
)

var _ session.Store = (*Gateway)(nil)

// Gateway stores session state in two tiers: the remote store, which survives
// restarts, and a local tier that keeps the board usable while the remote is
// unreachable.
type Gateway struct {
	remote  Remote
	local   Local
	metrics metrics.Metrics
}

// NewGateway creates a gateway over remote with a fresh local tier.
func NewGateway(remote Remote, m metrics.Metrics) *Gateway {
	return NewGatewayWithLocal(remote, NewMemory(), m)
}

// NewGatewayWithLocal creates a gateway over the given tiers.
func NewGatewayWithLocal(remote Remote, local Local, m metrics.Metrics) *Gateway {
	return &Gateway{remote: remote, local: local, metrics: m}
}

// Save writes the local tier first and then the remote. A remote failure is
// not an error: the save is reported as degraded and the local copy is kept.
func (g *Gateway) Save(ctx context.Context, sessionID string, state session.State) (bool, error) {
	start := time.Now()
	defer func() {
		g.metrics.ObservePersistDuration(time.Since(start).Seconds())
	}()

	packed, err := msgpack.Marshal(state)
	if err != nil {
		g.metrics.IncPersistFailed()
		return false, fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	g.local.Put(sessionID, packed)

	data, err := json.Marshal(state)
	if err != nil {
		g.metrics.IncPersistFailed()
		return false, fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	updated := state.LastUpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	err = g.remote.Upsert(ctx, Record{TrainingID: sessionID, StateData: data, UpdatedAt: updated})
	if err != nil {
		log.Warn("Remote save failed, session kept in local store only", "session_id", sessionID, "error", err)
		g.metrics.IncPersistDegraded()
		return true, nil
	}
	log.Debug("Session state saved", "session_id", sessionID, "bytes", len(data))
	return false, nil
}

// Load returns the persisted state of a session, or nil when neither tier has
// one. A remote failure of any kind falls back to the local tier. When both
// tiers hold a state the one updated last wins, the remote on a tie.
func (g *Gateway) Load(ctx context.Context, sessionID string) (*session.State, error) {
	remote := g.loadRemote(ctx, sessionID)
	local := g.loadLocal(sessionID)

	var chosen *session.State
	switch {
	case remote != nil && local != nil:
		chosen = remote
		if local.LastUpdatedAt.After(remote.LastUpdatedAt) {
			log.Info("Local session state is newer than remote", "session_id", sessionID, "local", local.LastUpdatedAt, "remote", remote.LastUpdatedAt)
			chosen = local
		}
	case remote != nil:
		chosen = remote
	case local != nil:
		chosen = local
	default:
		return nil, nil
	}
	chosen.Normalize()
	return chosen, nil
}

func (g *Gateway) loadRemote(ctx context.Context, sessionID string) *session.State {
	rec, err := g.remote.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Warn("Remote load failed, falling back to local store", "session_id", sessionID, "error", err)
		return nil
	}
	var st session.State
	if err := json.Unmarshal(rec.StateData, &st); err != nil {
		log.Warn("Discarding undecodable remote session state", "session_id", sessionID, "error", err)
		return nil
	}
	return &st
}

func (g *Gateway) loadLocal(sessionID string) *session.State {
	packed, ok := g.local.Get(sessionID)
	if !ok {
		return nil
	}
	var st session.State
	if err := msgpack.Unmarshal(packed, &st); err != nil {
		log.Warn("Discarding undecodable local session state", "session_id", sessionID, "error", err)
		return nil
	}
	return &st
}
