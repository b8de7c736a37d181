package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/training"
)

const defaultSearchLimit = 10

// ListPlayersHandler lists the club's players, or searches them by name when
// q is given.
func ListPlayersHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "" {
			limit := defaultSearchLimit
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 {
					writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive number"})
					return
				}
				limit = n
			}
			matches, err := store.SearchPlayers(r.Context(), q, limit)
			if err != nil {
				log.Error("Failed to search players", "query", q, "error", err)
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matches)
			return
		}

		by, err := club.ParseSortBy(r.URL.Query().Get("sort"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		players, err := store.ListPlayers(r.Context(), by)
		if err != nil {
			log.Error("Failed to get players from store", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func LeaderboardHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.GetPlayerStats(r.Context())
		if err != nil {
			log.Error("Failed to get player stats from store", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func ListTrainingsHandler(store training.TrainingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainings, err := store.List(r.Context())
		if err != nil {
			log.Error("Failed to list trainings", "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trainings)
	}
}

type createTrainingRequest struct {
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	CourtCount int       `json:"court_count"`
	PlayerIDs  []string  `json:"player_ids"`
}

func CreateTrainingHandler(store training.TrainingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTrainingRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.StartsAt.IsZero() {
			req.StartsAt = time.Now()
		}
		t, err := store.Create(r.Context(), req.Title, req.StartsAt, req.CourtCount, req.PlayerIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Training created", "training_id", t.ID, "courts", t.CourtCount, "players", len(t.PlayerIDs))
		writeJSON(w, http.StatusCreated, t)
	}
}
