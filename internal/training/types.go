package training

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for an unknown training id.
	ErrNotFound = errors.New("training not found")
	// ErrInvalid is returned when a training's fields are out of range.
	ErrInvalid = errors.New("invalid training")
)

// Training is one club training session: how many courts are booked and who
// signed up, in sign-up order.
type Training struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	CourtCount int       `json:"court_count"`
	PlayerIDs  []string  `json:"player_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// uniqueIDs drops empty and repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
