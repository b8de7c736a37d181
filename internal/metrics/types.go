package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	SessionsOpened     prometheus.Counter
	GamesStarted       prometheus.Counter
	GamesFinished      prometheus.Counter
	GamesCancelled     prometheus.Counter
	GameDuration       prometheus.Histogram
	PersistDegraded    prometheus.Counter
	PersistFailed      prometheus.Counter
	PersistDuration    prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
