package handlers

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/session"
)

type enqueueRequest struct {
	PlayerID string `json:"playerId"`
	End      string `json:"end"`
}

type assignRequest struct {
	PlayerID string `json:"playerId"`
	Half     string `json:"half"`
}

type finishRequest struct {
	Winner string `json:"winner"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// respond writes an action outcome, or the mapped error.
func respond(w http.ResponseWriter, out board.Outcome, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSessionHandler opens the session on first use and returns its view.
func GetSessionHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := b.View(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func EnqueueHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enqueueRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.End == "" {
			req.End = string(session.EndEnd)
		}
		end, err := session.ParseEnd(req.End)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Enqueue(r.Context(), r.PathValue("id"), req.PlayerID, end, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func RemoveFromQueueHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := b.RemoveFromQueue(r.Context(), r.PathValue("id"), r.PathValue("playerId"), IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func AddCourtHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := b.AddCourt(r.Context(), r.PathValue("id"), IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func RemoveLastCourtHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := b.RemoveLastCourt(r.Context(), r.PathValue("id"), IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func RenameCourtHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		var req renameRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		out, err := b.RenameCourt(r.Context(), r.PathValue("id"), courtID, req.Name, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func AssignHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		var req assignRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		half, err := session.ParseHalf(req.Half)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Assign(r.Context(), r.PathValue("id"), req.PlayerID, courtID, half, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func RemoveFromCourtHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		index, err := pathInt(r, "index")
		if err != nil {
			writeError(w, err)
			return
		}
		half, err := session.ParseHalf(r.PathValue("half"))
		if err != nil {
			writeError(w, err)
			return
		}
		requeue, err := board.ParseRequeue(r.URL.Query().Get("requeue"))
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Remove(r.Context(), r.PathValue("id"), courtID, half, index, requeue, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func StartGameHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Start(r.Context(), r.PathValue("id"), courtID, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func CancelGameHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Cancel(r.Context(), r.PathValue("id"), courtID, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func FinishGameHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID, err := pathInt(r, "court")
		if err != nil {
			writeError(w, err)
			return
		}
		var req finishRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		winner, err := session.ParseHalf(req.Winner)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := b.Finish(r.Context(), r.PathValue("id"), courtID, winner, IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func SetModeHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		out, err := b.SetMode(r.Context(), r.PathValue("id"), session.Mode(req.Mode), IsDryRunFromContext(r))
		respond(w, out, err)
	}
}

func PersistHandler(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := b.Persist(r.Context(), r.PathValue("id"), IsDryRunFromContext(r))
		respond(w, out, err)
	}
}
