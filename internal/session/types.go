package session

import (
	"fmt"
	"time"
)

// Half identifies one side of a court.
type Half string

const (
	HalfTop    Half = "top"
	HalfBottom Half = "bottom"
)

// End identifies where an entry is inserted into the queue.
type End string

const (
	EndStart End = "start"
	EndEnd   End = "end"
)

// Mode is the session's rotation preference. It is stored and reported, but the
// engine does not change its behaviour based on it.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeMaxTwoWins  Mode = "max-two-wins"
	ModeWinnerStays Mode = "winner-stays"
)

// SlotsPerHalf is the number of players on each side of a court.
const SlotsPerHalf = 2

// Player is the directory view of a club member.
type Player struct {
	ID                 string `json:"id"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Rating             int    `json:"rating"`
	PhotoURL           string `json:"photoUrl,omitempty"`
	ExternalProfileURL string `json:"externalProfileUrl,omitempty"`
}

// DisplayName joins first and last name.
func (p Player) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// QueueEntry is a queued player. Name and Rating are cached so a court
// placement can still be rendered if the directory is unavailable.
type QueueEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Rating   int    `json:"rating,omitempty"`
}

// Slot is a snapshot of the player seated on a court. It is copied at placement
// time so later edits to the player record do not rewrite history.
type Slot struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Photo    string `json:"photo,omitempty"`
	Rating   int    `json:"rating"`
}

// Court is one court of a training session.
type Court struct {
	ID             int                 `json:"id"`
	Name           string              `json:"name"`
	TopSlots       [SlotsPerHalf]*Slot `json:"topSlots"`
	BottomSlots    [SlotsPerHalf]*Slot `json:"bottomSlots"`
	GameInProgress bool                `json:"gameInProgress"`
	GameStartTime  *time.Time          `json:"gameStartTime"`
}

// State is the persisted aggregate for one training session.
type State struct {
	SessionID     string       `json:"sessionId"`
	Courts        []Court      `json:"courts"`
	Queue         []QueueEntry `json:"queue"`
	CourtCount    int          `json:"courtCount"`
	Mode          Mode         `json:"mode"`
	LastUpdatedAt time.Time    `json:"lastUpdatedAt"`
}

// Seed carries what is needed to synthesize a session that has never been
// persisted.
type Seed struct {
	CourtCount int
	PlayerIDs  []string
}

// Placement describes where DequeueToCourt seated a player.
type Placement struct {
	CourtID int  `json:"courtId"`
	Half    Half `json:"half"`
	Index   int  `json:"index"`
	// Ready is set when the placement filled the court. Starting the game is
	// left to the caller.
	Ready bool `json:"ready"`
}

// Result is the outcome of a finished game. Winners and losers are listed in
// slot order.
type Result struct {
	CourtID   int           `json:"courtId"`
	CourtName string        `json:"courtName"`
	Winners   []Slot        `json:"winners"`
	Losers    []Slot        `json:"losers"`
	Duration  time.Duration `json:"-"`
}

// FinishedGame is the record of a finished game handed to stats, notifications
// and other services.
type FinishedGame struct {
	// ID is unique per game. Stats use it to count a redelivered game once.
	ID         string    `json:"id" msgpack:"id"`
	SessionID  string    `json:"sessionId" msgpack:"sessionId"`
	CourtID    int       `json:"courtId" msgpack:"courtId"`
	CourtName  string    `json:"courtName" msgpack:"courtName"`
	Winners    []Slot    `json:"winners" msgpack:"winners"`
	Losers     []Slot    `json:"losers" msgpack:"losers"`
	DurationMs int64     `json:"durationMs" msgpack:"durationMs"`
	FinishedAt time.Time `json:"finishedAt" msgpack:"finishedAt"`
}

// DefaultCourtName returns the label used for a court that was never renamed.
func DefaultCourtName(id int) string {
	return fmt.Sprintf("Court %d", id)
}

// NewCourt returns an empty court with the default name.
func NewCourt(id int) Court {
	return Court{ID: id, Name: DefaultCourtName(id)}
}

func (h Half) valid() bool {
	return h == HalfTop || h == HalfBottom
}

func (e End) valid() bool {
	return e == EndStart || e == EndEnd
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSingle, ModeMaxTwoWins, ModeWinnerStays:
		return true
	}
	return false
}

// ParseHalf converts user input into a Half.
func ParseHalf(s string) (Half, error) {
	h := Half(s)
	if !h.valid() {
		return "", fmt.Errorf("half %q: %w", s, ErrValidation)
	}
	return h, nil
}

// ParseEnd converts user input into an End.
func ParseEnd(s string) (End, error) {
	e := End(s)
	if !e.valid() {
		return "", fmt.Errorf("queue end %q: %w", s, ErrValidation)
	}
	return e, nil
}

// slots returns the slot array for the given half.
func (c *Court) slots(h Half) *[SlotsPerHalf]*Slot {
	if h == HalfTop {
		return &c.TopSlots
	}
	return &c.BottomSlots
}

// Occupied returns the number of seated players.
func (c Court) Occupied() int {
	n := 0
	for _, s := range c.TopSlots {
		if s != nil {
			n++
		}
	}
	for _, s := range c.BottomSlots {
		if s != nil {
			n++
		}
	}
	return n
}

// Full reports whether all four slots are occupied.
func (c Court) Full() bool {
	return c.Occupied() == 2*SlotsPerHalf
}

// Empty reports whether no slot is occupied.
func (c Court) Empty() bool {
	return c.Occupied() == 0
}

// PlayerIDs lists the seated players, top half first, in slot order.
func (c Court) PlayerIDs() []string {
	var ids []string
	for _, s := range c.TopSlots {
		if s != nil {
			ids = append(ids, s.PlayerID)
		}
	}
	for _, s := range c.BottomSlots {
		if s != nil {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

func (c Court) clone() Court {
	out := c
	for i, s := range c.TopSlots {
		if s != nil {
			cp := *s
			out.TopSlots[i] = &cp
		}
	}
	for i, s := range c.BottomSlots {
		if s != nil {
			cp := *s
			out.BottomSlots[i] = &cp
		}
	}
	if c.GameStartTime != nil {
		ts := *c.GameStartTime
		out.GameStartTime = &ts
	}
	return out
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Courts = make([]Court, len(s.Courts))
	for i, c := range s.Courts {
		out.Courts[i] = c.clone()
	}
	out.Queue = make([]QueueEntry, len(s.Queue))
	copy(out.Queue, s.Queue)
	return out
}

// Normalize puts timestamps in UTC and replaces nil collections with empty
// ones, so decoded states compare equal regardless of the codec used.
func (s *State) Normalize() {
	if s.Queue == nil {
		s.Queue = []QueueEntry{}
	}
	if s.Courts == nil {
		s.Courts = []Court{}
	}
	if !s.LastUpdatedAt.IsZero() {
		s.LastUpdatedAt = s.LastUpdatedAt.UTC()
	}
	for i := range s.Courts {
		if ts := s.Courts[i].GameStartTime; ts != nil {
			utc := ts.UTC()
			s.Courts[i].GameStartTime = &utc
		}
	}
}

// Validate checks the structural invariants of a state: dense court ids, a
// matching court count, no player in two places, and every in-progress court
// full.
func (s State) Validate() error {
	if s.CourtCount != len(s.Courts) {
		return fmt.Errorf("court count %d does not match %d courts: %w", s.CourtCount, len(s.Courts), ErrInvalidState)
	}
	seen := make(map[string]string)
	note := func(id, where string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("player %s appears in %s and %s: %w", id, prev, where, ErrInvalidState)
		}
		seen[id] = where
		return nil
	}
	for i, c := range s.Courts {
		if c.ID != i+1 {
			return fmt.Errorf("court at position %d has id %d: %w", i, c.ID, ErrInvalidState)
		}
		if c.GameInProgress && !c.Full() {
			return fmt.Errorf("court %d is in progress with %d players: %w", c.ID, c.Occupied(), ErrInvalidState)
		}
		if c.GameInProgress != (c.GameStartTime != nil) {
			return fmt.Errorf("court %d start time does not match game state: %w", c.ID, ErrInvalidState)
		}
		for _, id := range c.PlayerIDs() {
			if err := note(id, DefaultCourtName(c.ID)); err != nil {
				return err
			}
		}
	}
	for _, e := range s.Queue {
		if err := note(e.PlayerID, "the queue"); err != nil {
			return err
		}
	}
	return nil
}
