package session

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Enqueue adds a player to the head (EndStart) or tail (EndEnd) of the queue.
// A player already queued or seated is skipped, so calling Enqueue twice never
// duplicates an entry. The returned bool reports whether the queue changed.
func (e *Engine) Enqueue(playerID string, end End) (bool, error) {
	if playerID == "" {
		return false, fmt.Errorf("empty player id: %w", ErrValidation)
	}
	if !end.valid() {
		return false, fmt.Errorf("queue end %q: %w", end, ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if where, ok := e.locateLocked(playerID); ok {
		log.Debug("Skipping enqueue, player already placed", "session_id", e.sessionID, "player_id", playerID, "location", where)
		return false, nil
	}

	entry, ok := e.known[playerID]
	if !ok {
		entry = QueueEntry{PlayerID: playerID}
	}
	if end == EndStart {
		e.state.Queue = append([]QueueEntry{entry}, e.state.Queue...)
	} else {
		e.state.Queue = append(e.state.Queue, entry)
	}
	e.known[playerID] = entry
	e.touchLocked()
	log.Debug("Enqueued player", "session_id", e.sessionID, "player_id", playerID, "end", end, "queue_length", len(e.state.Queue))
	return true, nil
}

// RemoveFromQueue takes a player out of the queue, for example when they leave
// the training early.
func (e *Engine) RemoveFromQueue(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.queueIndexLocked(playerID)
	if idx < 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrPlayerNotQueued)
	}
	e.state.Queue = append(e.state.Queue[:idx:idx], e.state.Queue[idx+1:]...)
	e.touchLocked()
	return nil
}

// Queue returns a copy of the queue, next player out first.
func (e *Engine) Queue() []QueueEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]QueueEntry, len(e.state.Queue))
	copy(out, e.state.Queue)
	return out
}

func (e *Engine) queueIndexLocked(playerID string) int {
	for i, entry := range e.state.Queue {
		if entry.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// locateLocked reports where a player currently is, if anywhere.
func (e *Engine) locateLocked(playerID string) (string, bool) {
	if e.queueIndexLocked(playerID) >= 0 {
		return "queue", true
	}
	for _, c := range e.state.Courts {
		for _, id := range c.PlayerIDs() {
			if id == playerID {
				return c.Name, true
			}
		}
	}
	return "", false
}
