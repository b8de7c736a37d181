package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Engine owns the in-memory state of one training session: its courts, the
// player queue and the games being played. It is the single source of truth
// for the board; views are projections of Serialize.
//
// Every mutating operation either applies completely or returns an error and
// leaves the state untouched. Operations never persist on their own; callers
// invoke Persist once per user-visible action.
type Engine struct {
	mu        sync.Mutex
	sessionID string
	state     State
	// known caches the last display data seen for every player so a player
	// returning to the queue keeps a name even if the directory is down.
	known map[string]QueueEntry

	store     Store
	directory Directory
	now       func() time.Time
	onTick    TickFunc
	timers    *timers
	interval  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTickHandler registers the callback fed by running game timers.
func WithTickHandler(fn TickFunc) Option {
	return func(e *Engine) {
		e.onTick = fn
	}
}

// WithTickInterval changes how often game timers fire.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// New creates an engine for sessionID. The engine is empty until Init is called.
func New(sessionID string, store Store, directory Directory, opts ...Option) *Engine {
	e := &Engine{
		sessionID: sessionID,
		store:     store,
		directory: directory,
		known:     make(map[string]QueueEntry),
		now:       func() time.Time { return time.Now().UTC() },
		interval:  DefaultTickInterval,
		state: State{
			SessionID: sessionID,
			Courts:    []Court{},
			Queue:     []QueueEntry{},
			Mode:      ModeSingle,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.timers = newTimers(e.interval)
	return e
}

// SessionID returns the id of the session the engine manages.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Init loads the persisted state of the session or, when none exists,
// synthesizes one from seed and persists it right away. A persisted state is
// adopted after repairing any inconsistency it carries. Timers of games that
// were running when the state was saved are recreated from their start times.
func (e *Engine) Init(ctx context.Context, seed Seed) (State, error) {
	if seed.CourtCount < 0 {
		return State{}, fmt.Errorf("court count %d: %w", seed.CourtCount, ErrValidation)
	}

	loaded, err := e.store.Load(ctx, e.sessionID)
	if err != nil {
		log.Warn("Failed to load session state, starting from scratch", "session_id", e.sessionID, "error", err)
		loaded = nil
	}

	if loaded != nil {
		st := loaded.Clone()
		st.Normalize()
		st.SessionID = e.sessionID
		e.reconcile(&st)

		e.mu.Lock()
		e.timers.stopAll()
		e.state = st
		e.rememberAllLocked()
		e.resumeTimersLocked()
		snapshot := e.state.Clone()
		e.mu.Unlock()

		log.Info("Adopted persisted session state", "session_id", e.sessionID, "courts", len(st.Courts), "queued", len(st.Queue))
		return snapshot, nil
	}

	log.Info("No persisted state found, synthesizing session", "session_id", e.sessionID, "court_count", seed.CourtCount, "players", len(seed.PlayerIDs))
	queue := e.initialQueue(ctx, seed.PlayerIDs)
	courts := make([]Court, seed.CourtCount)
	for i := range courts {
		courts[i] = NewCourt(i + 1)
	}

	e.mu.Lock()
	e.timers.stopAll()
	e.state = State{
		SessionID:     e.sessionID,
		Courts:        courts,
		Queue:         queue,
		CourtCount:    len(courts),
		Mode:          ModeSingle,
		LastUpdatedAt: e.now(),
	}
	e.rememberAllLocked()
	snapshot := e.state.Clone()
	e.mu.Unlock()

	// Persist logs its own failures; a synthesized session is usable either way.
	_, _ = e.Persist(ctx)
	return snapshot, nil
}

// initialQueue orders ids by rating, highest first. Ids the directory cannot
// resolve are rated 0. Equal ratings keep their listing order.
func (e *Engine) initialQueue(ctx context.Context, ids []string) []QueueEntry {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	players := make(map[string]Player, len(unique))
	if len(unique) > 0 && e.directory != nil {
		found, err := e.directory.GetPlayers(ctx, unique)
		if err != nil {
			log.Warn("Failed to resolve session players, ordering by rating 0", "session_id", e.sessionID, "error", err)
		}
		for _, p := range found {
			players[p.ID] = p
		}
	}

	queue := make([]QueueEntry, 0, len(unique))
	for _, id := range unique {
		entry := QueueEntry{PlayerID: id}
		if p, ok := players[id]; ok {
			entry.Name = p.DisplayName()
			entry.Rating = max(p.Rating, 0)
		}
		queue = append(queue, entry)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Rating > queue[j].Rating
	})
	return queue
}

// reconcile repairs a loaded state so every invariant holds again.
func (e *Engine) reconcile(st *State) {
	if st.CourtCount != len(st.Courts) {
		log.Warn("Persisted court count does not match courts, trusting courts", "session_id", e.sessionID, "court_count", st.CourtCount, "courts", len(st.Courts))
		st.CourtCount = len(st.Courts)
	}
	if !st.Mode.Valid() {
		if st.Mode != "" {
			log.Warn("Unknown session mode, falling back to single", "session_id", e.sessionID, "mode", st.Mode)
		}
		st.Mode = ModeSingle
	}

	sort.SliceStable(st.Courts, func(i, j int) bool {
		return st.Courts[i].ID < st.Courts[j].ID
	})
	for i := range st.Courts {
		c := &st.Courts[i]
		if c.ID != i+1 {
			log.Warn("Renumbering court to keep ids dense", "session_id", e.sessionID, "from", c.ID, "to", i+1)
			if c.Name == "" || c.Name == DefaultCourtName(c.ID) {
				c.Name = DefaultCourtName(i + 1)
			}
			c.ID = i + 1
		}
		if c.Name == "" {
			c.Name = DefaultCourtName(c.ID)
		}
	}

	seen := make(map[string]bool)
	for i := range st.Courts {
		c := &st.Courts[i]
		for _, h := range []Half{HalfTop, HalfBottom} {
			slots := c.slots(h)
			for j, s := range slots {
				if s == nil {
					continue
				}
				if s.PlayerID == "" || seen[s.PlayerID] {
					log.Warn("Dropping duplicate court placement", "session_id", e.sessionID, "court", c.ID, "player_id", s.PlayerID)
					slots[j] = nil
					continue
				}
				seen[s.PlayerID] = true
			}
		}
		if c.GameInProgress && !c.Full() {
			log.Warn("Court marked in progress without four players, clearing game", "session_id", e.sessionID, "court", c.ID)
			c.GameInProgress = false
		}
		switch {
		case c.GameInProgress && c.GameStartTime == nil:
			ts := e.now()
			c.GameStartTime = &ts
		case !c.GameInProgress:
			c.GameStartTime = nil
		}
	}

	queue := make([]QueueEntry, 0, len(st.Queue))
	for _, entry := range st.Queue {
		if entry.PlayerID == "" || seen[entry.PlayerID] {
			log.Warn("Dropping duplicate queue entry", "session_id", e.sessionID, "player_id", entry.PlayerID)
			continue
		}
		seen[entry.PlayerID] = true
		queue = append(queue, entry)
	}
	st.Queue = queue
}

func (e *Engine) resumeTimersLocked() {
	for _, c := range e.state.Courts {
		if c.GameInProgress && c.GameStartTime != nil {
			e.timers.start(c.ID, *c.GameStartTime, e.now, e.onTick)
		}
	}
}

func (e *Engine) rememberAllLocked() {
	for _, entry := range e.state.Queue {
		e.known[entry.PlayerID] = entry
	}
	for _, c := range e.state.Courts {
		for _, s := range append(c.TopSlots[:], c.BottomSlots[:]...) {
			if s != nil {
				e.rememberSlotLocked(*s)
			}
		}
	}
}

func (e *Engine) rememberSlotLocked(s Slot) {
	e.known[s.PlayerID] = QueueEntry{PlayerID: s.PlayerID, Name: s.Name, Rating: s.Rating}
}

func (e *Engine) touchLocked() {
	e.state.LastUpdatedAt = e.now()
}

// Serialize returns a deep copy of the current state.
func (e *Engine) Serialize() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Persist writes the current state through the store. Failures are logged and
// returned but never retried; callers decide whether to try again.
func (e *Engine) Persist(ctx context.Context) (bool, error) {
	snapshot := e.Serialize()
	degraded, err := e.store.Save(ctx, e.sessionID, snapshot)
	if err != nil {
		log.Error("Failed to persist session state", "session_id", e.sessionID, "error", err)
		return false, fmt.Errorf("failed to persist session %s: %w", e.sessionID, err)
	}
	if degraded {
		log.Warn("Session state persisted to fallback store only", "session_id", e.sessionID)
	}
	return degraded, nil
}

// SetMode stores the rotation preference of the session.
func (e *Engine) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("mode %q: %w", mode, ErrValidation)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Mode = mode
	e.touchLocked()
	return nil
}

// ActiveTimers returns the number of running game timers.
func (e *Engine) ActiveTimers() int {
	return e.timers.count()
}

// Close releases every running game timer.
func (e *Engine) Close() {
	e.timers.stopAll()
}
