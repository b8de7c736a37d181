package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/events"
)

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// SessionEventsHandler streams a session as server-sent events. The current
// state is sent first, followed by every state change and timer tick until
// the client goes away.
func SessionEventsHandler(b *board.Board, broker *events.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		sessionID := r.PathValue("id")

		// Subscribe before reading the state so no change falls in between.
		ch, unsubscribe := broker.Subscribe(sessionID)
		defer unsubscribe()

		v, err := b.View(r.Context(), sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		initial, err := json.Marshal(v)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if err := writeEvent(w, flusher, events.EventState, initial); err != nil {
			return
		}
		log.Debug("Stream opened", "session_id", sessionID)

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				log.Debug("Stream closed by client", "session_id", sessionID)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, flusher, msg.Event, msg.Data); err != nil {
					log.Debug("Stream write failed", "session_id", sessionID, "error", err)
					return
				}
			}
		}
	}
}
