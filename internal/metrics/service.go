package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_sessions_opened_total",
			Help: "The total number of training sessions loaded into memory.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_games_started_total",
			Help: "The total number of games started.",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_games_finished_total",
			Help: "The total number of games finished with a result.",
		}),
		GamesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_games_cancelled_total",
			Help: "The total number of games cancelled without a result.",
		}),
		GameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_game_duration_seconds",
			Help:    "The duration of finished games.",
			Buckets: []float64{60, 300, 600, 900, 1200, 1800, 2700, 3600},
		}),
		PersistDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_persist_degraded_total",
			Help: "The total number of saves that only reached the local fallback store.",
		}),
		PersistFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_persist_failed_total",
			Help: "The total number of saves that reached no store at all.",
		}),
		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_persist_duration_seconds",
			Help:    "The duration of session state saves.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SessionsOpened,
		s.GamesStarted,
		s.GamesFinished,
		s.GamesCancelled,
		s.GameDuration,
		s.PersistDegraded,
		s.PersistFailed,
		s.PersistDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSessionsOpened() {
	s.SessionsOpened.Inc()
}

func (s *Service) IncGamesStarted() {
	s.GamesStarted.Inc()
}

func (s *Service) IncGamesFinished() {
	s.GamesFinished.Inc()
}

func (s *Service) IncGamesCancelled() {
	s.GamesCancelled.Inc()
}

func (s *Service) ObserveGameDuration(seconds float64) {
	s.GameDuration.Observe(seconds)
}

func (s *Service) IncPersistDegraded() {
	s.PersistDegraded.Inc()
}

func (s *Service) IncPersistFailed() {
	s.PersistFailed.Inc()
}

func (s *Service) ObservePersistDuration(seconds float64) {
	s.PersistDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
