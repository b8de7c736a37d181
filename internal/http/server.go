package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/events"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/training"
)

func NewServer(b *board.Board, store club.ClubStore, trainings training.TrainingStore, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient, broker *events.Broker) *Server {
	server := &Server{
		Board:          b,
		Store:          store,
		Trainings:      trainings,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		PubSub:         pubsub,
		Broker:         broker,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(handler, paramsMiddleware, authMiddleware)
	handle := func(pattern string, h http.Handler, middlewares ...Middleware) {
		s.Router.Handle(pattern, Chain(h, append([]Middleware{paramsMiddleware}, middlewares...)...))
	}
	slackVerify := slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	handle("GET /health", handlers.HealthCheckHandler())
	handle("POST /clear", handlers.ClearStoreHandler(s.Store))
	handle("GET /players", handlers.ListPlayersHandler(s.Store))
	handle("GET /leaderboard", handlers.LeaderboardHandler(s.Store))
	handle("GET /trainings", handlers.ListTrainingsHandler(s.Trainings))
	handle("POST /trainings", handlers.CreateTrainingHandler(s.Trainings))

	handle("GET /sessions/{id}", handlers.GetSessionHandler(s.Board))
	handle("GET /sessions/{id}/events", handlers.SessionEventsHandler(s.Board, s.Broker))
	handle("POST /sessions/{id}/queue", handlers.EnqueueHandler(s.Board))
	handle("DELETE /sessions/{id}/queue/{playerId}", handlers.RemoveFromQueueHandler(s.Board))
	handle("POST /sessions/{id}/courts", handlers.AddCourtHandler(s.Board))
	handle("DELETE /sessions/{id}/courts/last", handlers.RemoveLastCourtHandler(s.Board))
	handle("PUT /sessions/{id}/courts/{court}/name", handlers.RenameCourtHandler(s.Board))
	handle("POST /sessions/{id}/courts/{court}/slots", handlers.AssignHandler(s.Board))
	handle("DELETE /sessions/{id}/courts/{court}/slots/{half}/{index}", handlers.RemoveFromCourtHandler(s.Board))
	handle("POST /sessions/{id}/courts/{court}/start", handlers.StartGameHandler(s.Board))
	handle("POST /sessions/{id}/courts/{court}/cancel", handlers.CancelGameHandler(s.Board))
	handle("POST /sessions/{id}/courts/{court}/finish", handlers.FinishGameHandler(s.Board))
	handle("PUT /sessions/{id}/mode", handlers.SetModeHandler(s.Board))
	handle("POST /sessions/{id}/persist", handlers.PersistHandler(s.Board))

	handle("POST /pubsub/game-finished", handlers.GameFinishedHandler(s.Board, s.PubSub))
	handle("POST /slack/command/leaderboard", handlers.LeaderboardCommandHandler(s.Store, s.Notifier), slackVerify)
	handle("POST /slack/command/player", handlers.PlayerSearchCommandHandler(s.Store), slackVerify)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
