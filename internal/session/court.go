package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

func (e *Engine) courtLocked(courtID int) (*Court, error) {
	if courtID < 1 || courtID > len(e.state.Courts) {
		return nil, fmt.Errorf("court %d out of range 1..%d: %w", courtID, len(e.state.Courts), ErrValidation)
	}
	return &e.state.Courts[courtID-1], nil
}

// DequeueToCourt moves a queued player into the first empty slot of the given
// half. The seated snapshot comes from the directory, falling back to the data
// cached on the queue entry when the lookup fails. Placement.Ready is set when
// the court became full; the game is not started automatically.
//
// The directory lookup runs before the state lock is taken; every check is
// made afterwards against the current state.
func (e *Engine) DequeueToCourt(ctx context.Context, playerID string, courtID int, half Half) (Placement, error) {
	if !half.valid() {
		return Placement{}, fmt.Errorf("half %q: %w", half, ErrValidation)
	}
	lookup := e.lookupPlayer(ctx, playerID)

	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return Placement{}, err
	}
	if court.GameInProgress {
		return Placement{}, fmt.Errorf("court %d: %w", courtID, ErrCourtLocked)
	}
	qi := e.queueIndexLocked(playerID)
	if qi < 0 {
		return Placement{}, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotQueued)
	}
	slots := court.slots(half)
	si := -1
	for i, s := range slots {
		if s == nil {
			si = i
			break
		}
	}
	if si < 0 {
		return Placement{}, fmt.Errorf("court %d %s: %w", courtID, half, ErrSlotFull)
	}

	slot := snapshot(e.state.Queue[qi], lookup)
	e.state.Queue = append(e.state.Queue[:qi:qi], e.state.Queue[qi+1:]...)
	slots[si] = &slot
	e.rememberSlotLocked(slot)
	e.touchLocked()

	ready := court.Full()
	log.Info("Player placed on court", "session_id", e.sessionID, "player_id", playerID, "court", courtID, "half", half, "slot", si, "ready", ready)
	return Placement{CourtID: courtID, Half: half, Index: si, Ready: ready}, nil
}

// lookupPlayer fetches a player from the directory. It returns nil when there
// is no directory or the lookup fails.
func (e *Engine) lookupPlayer(ctx context.Context, playerID string) *Player {
	if e.directory == nil || playerID == "" {
		return nil
	}
	p, err := e.directory.GetPlayer(ctx, playerID)
	if err != nil {
		log.Warn("Player lookup failed, using queued data", "session_id", e.sessionID, "player_id", playerID, "error", err)
		return nil
	}
	return &p
}

// snapshot builds the seated data for a queue entry, preferring the directory
// record when there is one.
func snapshot(entry QueueEntry, p *Player) Slot {
	fallback := Slot{PlayerID: entry.PlayerID, Name: entry.Name, Rating: entry.Rating}
	if fallback.Name == "" {
		fallback.Name = entry.PlayerID
	}
	if p == nil {
		return fallback
	}
	name := p.DisplayName()
	if name == "" {
		name = fallback.Name
	}
	return Slot{PlayerID: p.ID, Name: name, Photo: p.PhotoURL, Rating: max(p.Rating, 0)}
}

// RemoveFromCourt clears a slot and returns the freed player id. The player is
// not requeued; the caller decides where they go. Slots of a court with a game
// in progress cannot be cleared.
func (e *Engine) RemoveFromCourt(courtID int, half Half, slotIndex int) (string, error) {
	if !half.valid() {
		return "", fmt.Errorf("half %q: %w", half, ErrValidation)
	}
	if slotIndex < 0 || slotIndex >= SlotsPerHalf {
		return "", fmt.Errorf("slot index %d: %w", slotIndex, ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return "", err
	}
	if court.GameInProgress {
		return "", fmt.Errorf("court %d: %w", courtID, ErrCourtLocked)
	}
	slots := court.slots(half)
	slot := slots[slotIndex]
	if slot == nil {
		return "", fmt.Errorf("court %d %s slot %d: %w", courtID, half, slotIndex, ErrSlotEmpty)
	}
	slots[slotIndex] = nil
	e.rememberSlotLocked(*slot)
	e.touchLocked()

	log.Info("Player removed from court", "session_id", e.sessionID, "player_id", slot.PlayerID, "court", courtID, "half", half, "slot", slotIndex)
	return slot.PlayerID, nil
}

// StartGame starts the game on a full court and locks its slots. Starting a
// game that is already running fails rather than resetting the clock.
func (e *Engine) StartGame(courtID int) (time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return time.Time{}, err
	}
	if court.GameInProgress {
		return time.Time{}, fmt.Errorf("court %d: %w", courtID, ErrAlreadyInProgress)
	}
	if !court.Full() {
		return time.Time{}, fmt.Errorf("court %d has %d players: %w", courtID, court.Occupied(), ErrCourtNotFull)
	}

	started := e.now()
	court.GameInProgress = true
	court.GameStartTime = &started
	e.touchLocked()
	e.timers.start(courtID, started, e.now, e.onTick)

	log.Info("Game started", "session_id", e.sessionID, "court", courtID)
	return started, nil
}

// CancelGame stops a running game without a result. The players stay seated so
// the game can be restarted.
func (e *Engine) CancelGame(courtID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return err
	}
	if !court.GameInProgress {
		return fmt.Errorf("court %d: %w", courtID, ErrNotInProgress)
	}
	court.GameInProgress = false
	court.GameStartTime = nil
	e.timers.stop(courtID)
	e.touchLocked()

	log.Info("Game cancelled", "session_id", e.sessionID, "court", courtID)
	return nil
}

// FinishGame resolves a running game in favour of winner, clears all four
// slots and unlocks the court. Where the players go next is up to the caller.
func (e *Engine) FinishGame(courtID int, winner Half) (Result, error) {
	if !winner.valid() {
		return Result{}, fmt.Errorf("winning half %q: %w", winner, ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return Result{}, err
	}
	if !court.GameInProgress {
		return Result{}, fmt.Errorf("court %d: %w", courtID, ErrNotInProgress)
	}
	if !court.Full() {
		return Result{}, fmt.Errorf("court %d has %d players: %w", courtID, court.Occupied(), ErrCourtNotFull)
	}

	loser := HalfBottom
	if winner == HalfBottom {
		loser = HalfTop
	}
	var duration time.Duration
	if court.GameStartTime != nil {
		duration = max(e.now().Sub(*court.GameStartTime), 0)
	}
	result := Result{
		CourtID:   courtID,
		CourtName: court.Name,
		Winners:   make([]Slot, 0, SlotsPerHalf),
		Losers:    make([]Slot, 0, SlotsPerHalf),
		Duration:  duration,
	}
	for _, s := range court.slots(winner) {
		result.Winners = append(result.Winners, *s)
		e.rememberSlotLocked(*s)
	}
	for _, s := range court.slots(loser) {
		result.Losers = append(result.Losers, *s)
		e.rememberSlotLocked(*s)
	}

	court.TopSlots = [SlotsPerHalf]*Slot{}
	court.BottomSlots = [SlotsPerHalf]*Slot{}
	court.GameInProgress = false
	court.GameStartTime = nil
	e.timers.stop(courtID)
	e.touchLocked()

	log.Info("Game finished", "session_id", e.sessionID, "court", courtID, "winner", winner, "duration_ms", duration.Milliseconds())
	return result, nil
}

// Elapsed returns how long the game on a court has been running, or zero when
// the court is idle.
func (e *Engine) Elapsed(courtID int) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	court, err := e.courtLocked(courtID)
	if err != nil || !court.GameInProgress || court.GameStartTime == nil {
		return 0
	}
	return max(e.now().Sub(*court.GameStartTime), 0)
}

// AddCourt appends an empty court with the next id.
func (e *Engine) AddCourt() Court {
	e.mu.Lock()
	defer e.mu.Unlock()

	court := NewCourt(len(e.state.Courts) + 1)
	e.state.Courts = append(e.state.Courts, court)
	e.state.CourtCount = len(e.state.Courts)
	e.touchLocked()

	log.Info("Court added", "session_id", e.sessionID, "court", court.ID)
	return court.clone()
}

// RemoveLastCourt removes the court with the highest id. Only that court can be
// removed so ids stay dense. It must be empty, and a session keeps at least one
// court.
func (e *Engine) RemoveLastCourt() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.state.Courts)
	if n <= 1 {
		return fmt.Errorf("session must keep at least one court: %w", ErrValidation)
	}
	last := e.state.Courts[n-1]
	if !last.Empty() {
		return fmt.Errorf("court %d has %d players: %w", last.ID, last.Occupied(), ErrCourtNotEmpty)
	}
	e.state.Courts = e.state.Courts[:n-1]
	e.state.CourtCount = len(e.state.Courts)
	e.timers.stop(last.ID)
	e.touchLocked()

	log.Info("Court removed", "session_id", e.sessionID, "court", last.ID)
	return nil
}

// RenameCourt sets a court's display label. A blank name restores the default.
func (e *Engine) RenameCourt(courtID int, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	court, err := e.courtLocked(courtID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCourtName(courtID)
	}
	court.Name = name
	e.touchLocked()
	return nil
}
