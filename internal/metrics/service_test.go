package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncSessionsOpened()
	s.IncGamesStarted()
	s.IncGamesStarted()
	s.IncGamesFinished()
	s.IncPersistDegraded()
	s.ObservePersistDuration(0.02)
	s.IncSlackNotifFailed()

	body := scrape(t, reg)
	assert.Contains(t, body, "courtside_sessions_opened_total 1")
	assert.Contains(t, body, "courtside_games_started_total 2")
	assert.Contains(t, body, "courtside_games_finished_total 1")
	assert.Contains(t, body, "courtside_games_cancelled_total 0")
	assert.Contains(t, body, "courtside_persist_degraded_total 1")
	assert.Contains(t, body, "courtside_persist_duration_seconds_count 1")
	assert.Contains(t, body, "courtside_slack_notifications_failed_total 1")
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.IncGamesStarted()
	m.IncPersistFailed()
	m.ObservePersistDuration(0.5)

	assert.Equal(t, 1, m.GamesStarted())
	assert.Equal(t, 1, m.PersistFailed())
	assert.Equal(t, 0, m.PersistDegraded())
	assert.Equal(t, []float64{0.5}, m.PersistDurations())
}
