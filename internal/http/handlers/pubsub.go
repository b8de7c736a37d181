package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/session"
)

// pushMessage is the envelope Google Pub/Sub push subscriptions POST.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// GameFinishedHandler is the push endpoint of the game-finished subscription.
// Malformed messages get a 4xx. Handling failures get a 5xx so Pub/Sub
// redelivers them.
func GameFinishedHandler(b *board.Board, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received game finished message", "body", string(bodyBytes))

		var pubsubMsg pushMessage
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var game session.FinishedGame
		if err := pubsubClient.ProcessMessage(rawData, &game); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := b.HandleGameFinished(r.Context(), game, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to handle finished game", "message_id", pubsubMsg.Message.MessageID, "error", err)
			http.Error(w, "Failed to handle finished game", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
