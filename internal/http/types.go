package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/events"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/training"
)

type Server struct {
	Board          *board.Board
	Store          club.ClubStore
	Trainings      training.TrainingStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	Broker         *events.Broker
	Router         *http.ServeMux
}
