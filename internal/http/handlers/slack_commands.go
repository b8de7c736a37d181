package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func LeaderboardCommandHandler(store club.ClubStore, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.GetPlayerStats(r.Context())
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		slackMsg.ResponseType = slack.ResponseTypeInChannel
		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerSearchCommandHandler answers /player <name> with the closest matches.
func PlayerSearchCommandHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		query := strings.TrimSpace(r.FormValue("text"))
		if query == "" {
			respondWithSlackMsg(w, slack.Message{Msg: slack.Msg{
				ResponseType: slack.ResponseTypeEphemeral,
				Text:         "Usage: /player <name>",
			}})
			return
		}

		matches, err := store.SearchPlayers(r.Context(), query, 5)
		if err != nil {
			http.Error(w, "Failed to search players", http.StatusInternalServerError)
			log.Error("Failed to search players", "query", query, "error", err)
			return
		}
		if len(matches) == 0 {
			respondWithSlackMsg(w, slack.Message{Msg: slack.Msg{
				ResponseType: slack.ResponseTypeEphemeral,
				Text:         "No player found matching \"" + query + "\"",
			}})
			return
		}

		lines := make([]string, 0, len(matches))
		for _, m := range matches {
			lines = append(lines, "• "+m.Player.DisplayName()+" ("+m.Player.ID+")")
		}
		respondWithSlackMsg(w, slack.Message{Msg: slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         strings.Join(lines, "\n"),
		}})
	}
}
