package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSessionsOpened()
	IncGamesStarted()
	IncGamesFinished()
	IncGamesCancelled()
	ObserveGameDuration(seconds float64)
	IncPersistDegraded()
	IncPersistFailed()
	ObservePersistDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
