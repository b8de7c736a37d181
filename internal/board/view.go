package board

import (
	"time"

	"github.com/mauv0809/courtside/internal/rating"
	"github.com/mauv0809/courtside/internal/session"
)

// Project renders a session state for clients. Elapsed times are computed
// against now.
func Project(st session.State, now time.Time) View {
	v := View{
		SessionID:     st.SessionID,
		Mode:          st.Mode,
		CourtCount:    st.CourtCount,
		Courts:        make([]CourtView, 0, len(st.Courts)),
		Queue:         make([]PlayerCard, 0, len(st.Queue)),
		LastUpdatedAt: st.LastUpdatedAt,
	}
	for _, q := range st.Queue {
		name := q.Name
		if name == "" {
			name = q.PlayerID
		}
		v.Queue = append(v.Queue, PlayerCard{
			PlayerID: q.PlayerID,
			Name:     name,
			Rating:   q.Rating,
			Band:     rating.Classify(q.Rating),
		})
	}
	for _, c := range st.Courts {
		cv := CourtView{
			ID:             c.ID,
			Name:           c.Name,
			GameInProgress: c.GameInProgress,
			GameStartTime:  c.GameStartTime,
			Ready:          c.Full() && !c.GameInProgress,
		}
		for i := range session.SlotsPerHalf {
			cv.Top[i] = card(c.TopSlots[i])
			cv.Bottom[i] = card(c.BottomSlots[i])
		}
		if c.GameInProgress && c.GameStartTime != nil {
			cv.ElapsedMs = max(now.Sub(*c.GameStartTime), 0).Milliseconds()
		}
		v.Courts = append(v.Courts, cv)
	}
	return v
}

func card(s *session.Slot) *PlayerCard {
	if s == nil {
		return nil
	}
	return &PlayerCard{
		PlayerID: s.PlayerID,
		Name:     s.Name,
		Photo:    s.Photo,
		Rating:   s.Rating,
		Band:     rating.Classify(s.Rating),
	}
}
