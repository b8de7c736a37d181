package board

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/events"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/session"
)

// WithClock overrides the time source handed to every engine.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithTickInterval sets how often running game timers publish ticks.
func WithTickInterval(d time.Duration) Option {
	return func(b *Board) {
		b.tick = d
	}
}

// New creates a Board. pubsub and broker may be nil, in which case finished
// games are handled inline and no events are streamed.
func New(trainings Trainings, directory session.Directory, stats Stats, store session.Store, notifier Notifier, pubsub pubsub.PubSubClient, broker *events.Broker, metrics metrics.Metrics, opts ...Option) *Board {
	b := &Board{
		sessions:  make(map[string]*entry),
		trainings: trainings,
		directory: directory,
		stats:     stats,
		store:     store,
		notifier:  notifier,
		pubsub:    pubsub,
		broker:    broker,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		tick:      session.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open returns the engine of a training session, loading it on first use.
// Concurrent opens of the same session share one initialization. An unknown
// training is reported with training.ErrNotFound.
func (b *Board) Open(ctx context.Context, sessionID string) (*session.Engine, error) {
	en, err := b.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return en.engine, nil
}

func (b *Board) open(ctx context.Context, sessionID string) (*entry, error) {
	b.mu.RLock()
	en, ok := b.sessions[sessionID]
	b.mu.RUnlock()
	if ok {
		return en, nil
	}

	v, err, _ := b.opening.Do(sessionID, func() (any, error) {
		// Shared by every concurrent caller, so no single request may cancel it.
		ctx := context.WithoutCancel(ctx)

		b.mu.RLock()
		en, ok := b.sessions[sessionID]
		b.mu.RUnlock()
		if ok {
			return en, nil
		}

		t, err := b.trainings.Get(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to open session %s: %w", sessionID, err)
		}

		engine := session.New(sessionID, b.store, b.directory,
			session.WithClock(b.now),
			session.WithTickInterval(b.tick),
			session.WithTickHandler(b.tickHandler(sessionID)),
		)
		st, err := engine.Init(ctx, session.Seed{CourtCount: t.CourtCount, PlayerIDs: t.PlayerIDs})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to open session %s: %w", sessionID, err)
		}

		en = &entry{engine: engine}
		b.mu.Lock()
		b.sessions[sessionID] = en
		b.mu.Unlock()

		b.metrics.IncSessionsOpened()
		log.Info("Session opened", "session_id", sessionID, "title", t.Title, "courts", len(st.Courts), "queue_length", len(st.Queue))
		return en, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// Sessions lists the ids of the sessions loaded in this process.
func (b *Board) Sessions() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.sessions))
	for id := range b.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close releases the timers of every loaded session.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, en := range b.sessions {
		en.engine.Close()
		delete(b.sessions, id)
	}
}

func (b *Board) tickHandler(sessionID string) session.TickFunc {
	return func(courtID int, elapsed time.Duration) {
		if b.broker == nil {
			return
		}
		b.broker.PublishJSON(sessionID, events.EventTick, events.Tick{CourtID: courtID, ElapsedMs: elapsed.Milliseconds()})
	}
}

// View returns the current projection of a session.
func (b *Board) View(ctx context.Context, sessionID string) (View, error) {
	en, err := b.open(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return b.project(en), nil
}

func (b *Board) project(en *entry) View {
	v := Project(en.engine.Serialize(), b.now())
	v.Degraded = en.degraded
	return v
}

// apply runs fn under the session's action lock and, when fn reports a
// change, saves the session once and broadcasts the new state.
func (b *Board) apply(ctx context.Context, sessionID string, dryRun bool, fn func(e *session.Engine, out *Outcome) (bool, error)) (Outcome, error) {
	en, err := b.open(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	en.mu.Lock()
	defer en.mu.Unlock()

	var out Outcome
	changed, err := fn(en.engine, &out)
	if err != nil {
		log.Debug("Action rejected", "session_id", sessionID, "error", err)
		return Outcome{}, err
	}
	out.Changed = changed
	if changed {
		b.commit(ctx, en, dryRun)
	}
	out.Degraded = en.degraded
	out.Session = b.project(en)
	if changed && b.broker != nil {
		b.broker.PublishJSON(sessionID, events.EventState, out.Session)
	}
	return out, nil
}

// commit saves the session. A save that only reached the local tier, or that
// failed outright, marks the session degraded and warns once per outage.
func (b *Board) commit(ctx context.Context, en *entry, dryRun bool) {
	sessionID := en.engine.SessionID()
	degraded, err := en.engine.Persist(ctx)
	if err != nil {
		b.metrics.IncPersistFailed()
		degraded = true
	}
	if degraded && !en.degraded {
		if err := b.notifier.SendPersistenceWarning(sessionID, dryRun); err != nil {
			log.Error("Failed to send persistence warning", "session_id", sessionID, "error", err)
		}
	}
	if !degraded && en.degraded {
		log.Info("Remote persistence recovered", "session_id", sessionID)
	}
	en.degraded = degraded
}

// Persist saves a session on demand and reports whether the save was degraded.
func (b *Board) Persist(ctx context.Context, sessionID string, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return true, nil
	})
}

// Enqueue adds a player to the queue. Nothing is saved when the player was
// already on the board.
func (b *Board) Enqueue(ctx context.Context, sessionID, playerID string, end session.End, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return e.Enqueue(playerID, end)
	})
}

// RemoveFromQueue takes a player off the queue.
func (b *Board) RemoveFromQueue(ctx context.Context, sessionID, playerID string, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return true, e.RemoveFromQueue(playerID)
	})
}

// Assign seats a queued player on a court.
func (b *Board) Assign(ctx context.Context, sessionID, playerID string, courtID int, half session.Half, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		p, err := e.DequeueToCourt(ctx, playerID, courtID, half)
		if err != nil {
			return false, err
		}
		out.Placement = &p
		return true, nil
	})
}

// Remove clears a court slot and puts the freed player back in the queue at
// the requested end.
func (b *Board) Remove(ctx context.Context, sessionID string, courtID int, half session.Half, index int, requeue Requeue, dryRun bool) (Outcome, error) {
	if _, err := ParseRequeue(string(requeue)); err != nil {
		return Outcome{}, err
	}
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		freed, err := e.RemoveFromCourt(courtID, half, index)
		if err != nil {
			return false, err
		}
		out.Freed = freed
		switch requeue {
		case RequeueStart, "":
			_, err = e.Enqueue(freed, session.EndStart)
		case RequeueEnd:
			_, err = e.Enqueue(freed, session.EndEnd)
		}
		if err != nil {
			log.Warn("Failed to requeue removed player", "session_id", sessionID, "player_id", freed, "error", err)
		}
		return true, nil
	})
}

// Start starts the game on a full court.
func (b *Board) Start(ctx context.Context, sessionID string, courtID int, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		if _, err := e.StartGame(courtID); err != nil {
			return false, err
		}
		b.metrics.IncGamesStarted()
		return true, nil
	})
}

// Cancel stops a running game without a result.
func (b *Board) Cancel(ctx context.Context, sessionID string, courtID int, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		if err := e.CancelGame(courtID); err != nil {
			return false, err
		}
		b.metrics.IncGamesCancelled()
		return true, nil
	})
}

// AddCourt appends an empty court.
func (b *Board) AddCourt(ctx context.Context, sessionID string, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		e.AddCourt()
		return true, nil
	})
}

// RemoveLastCourt removes the highest numbered court if it is empty.
func (b *Board) RemoveLastCourt(ctx context.Context, sessionID string, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return true, e.RemoveLastCourt()
	})
}

// RenameCourt changes a court's label.
func (b *Board) RenameCourt(ctx context.Context, sessionID string, courtID int, name string, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return true, e.RenameCourt(courtID, name)
	})
}

// SetMode stores the rotation preference.
func (b *Board) SetMode(ctx context.Context, sessionID string, mode session.Mode, dryRun bool) (Outcome, error) {
	return b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		return true, e.SetMode(mode)
	})
}
