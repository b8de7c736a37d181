package board

import (
	"fmt"
	"sync"
	"time"

	"github.com/mauv0809/courtside/internal/events"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/rating"
	"github.com/mauv0809/courtside/internal/session"
	"golang.org/x/sync/singleflight"
)

// Board keeps one engine per open training session and applies the
// user-facing policies around it: requeueing after games, one save per
// action, notifications and events.
type Board struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	opening  singleflight.Group

	trainings Trainings
	directory session.Directory
	stats     Stats
	store     session.Store
	notifier  Notifier
	pubsub    pubsub.PubSubClient
	broker    *events.Broker
	metrics   metrics.Metrics

	now  func() time.Time
	tick time.Duration
}

// entry serializes the actions on one session so composite actions such as
// finish-and-requeue are applied and saved as a unit.
type entry struct {
	mu       sync.Mutex
	engine   *session.Engine
	degraded bool
}

// Option configures a Board.
type Option func(*Board)

// Requeue tells Remove where a freed player goes.
type Requeue string

const (
	RequeueStart Requeue = "start"
	RequeueEnd   Requeue = "end"
	RequeueNone  Requeue = "none"
)

// ParseRequeue converts user input into a Requeue. Empty input means start,
// since a player taken off a court has not played.
func ParseRequeue(s string) (Requeue, error) {
	switch Requeue(s) {
	case "":
		return RequeueStart, nil
	case RequeueStart, RequeueEnd, RequeueNone:
		return Requeue(s), nil
	}
	return "", fmt.Errorf("requeue %q: %w", s, session.ErrValidation)
}

// PlayerCard is a player as shown on the board.
type PlayerCard struct {
	PlayerID string      `json:"playerId"`
	Name     string      `json:"name"`
	Photo    string      `json:"photo,omitempty"`
	Rating   int         `json:"rating"`
	Band     rating.Band `json:"band"`
}

// CourtView is the projection of one court.
type CourtView struct {
	ID             int                               `json:"id"`
	Name           string                            `json:"name"`
	Top            [session.SlotsPerHalf]*PlayerCard `json:"top"`
	Bottom         [session.SlotsPerHalf]*PlayerCard `json:"bottom"`
	GameInProgress bool                              `json:"gameInProgress"`
	GameStartTime  *time.Time                        `json:"gameStartTime,omitempty"`
	ElapsedMs      int64                             `json:"elapsedMs"`
	Ready          bool                              `json:"ready"`
}

// View is the read model of a session served to clients.
type View struct {
	SessionID     string       `json:"sessionId"`
	Mode          session.Mode `json:"mode"`
	CourtCount    int          `json:"courtCount"`
	Courts        []CourtView  `json:"courts"`
	Queue         []PlayerCard `json:"queue"`
	LastUpdatedAt time.Time    `json:"lastUpdatedAt"`
	Degraded      bool         `json:"degraded"`
}

// Outcome is what an action returns: the new view plus action specific data.
type Outcome struct {
	Session   View                  `json:"session"`
	Degraded  bool                  `json:"degraded"`
	Changed   bool                  `json:"changed"`
	Placement *session.Placement    `json:"placement,omitempty"`
	Freed     string                `json:"freedPlayerId,omitempty"`
	Game      *session.FinishedGame `json:"game,omitempty"`
}
