package http

import (
	"bufio"
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/board"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/events"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/persistence"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/mauv0809/courtside/internal/training"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, notifier notifier.Notifier, slackSigningSecret string) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	clubStore := club.New(db)
	trainings := training.NewStore(db)
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	gateway := persistence.NewGateway(persistence.NewSQLRemote(db), metricsSvc)
	ps := pubsub.NewMock()
	broker := events.NewBroker()
	b := board.New(trainings, clubStore, clubStore, gateway, notifier, ps, broker, metricsSvc)

	server := NewServer(b, clubStore, trainings, metricsHandler, cfg, notifier, ps, broker)

	teardown := func() {
		b.Close()
		dbTeardown()
	}
	return server, teardown
}

// seedTraining stores four players and a one-court training holding them.
func seedTraining(t *testing.T, s *Server) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Store.UpsertPlayers(ctx, []session.Player{
		{ID: "p1", FirstName: "Anna", LastName: "One", Rating: 900},
		{ID: "p2", FirstName: "Bo", LastName: "Two", Rating: 500},
		{ID: "p3", FirstName: "Carl", LastName: "Three", Rating: 200},
		{ID: "p4", FirstName: "Dina", LastName: "Four", Rating: 700},
	}))
	tr, err := s.Trainings.Create(ctx, "Thursday doubles", time.Date(2025, 3, 13, 19, 0, 0, 0, time.UTC), 1, []string{"p1", "p2", "p3", "p4"})
	require.NoError(t, err)
	return tr.ID
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func decodeOutcome(t *testing.T, rr *httptest.ResponseRecorder) board.Outcome {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out board.Outcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func queueOf(v board.View) []string {
	ids := make([]string, 0, len(v.Queue))
	for _, q := range v.Queue {
		ids = append(ids, q.PlayerID)
	}
	return ids
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	rr := do(t, server, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestMetricsEndpoint(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()
	id := seedTraining(t, server)

	require.Equal(t, http.StatusOK, do(t, server, "GET", "/sessions/"+id, nil).Code)

	rr := do(t, server, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "courtside_sessions_opened_total 1")
}

func TestListPlayersHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()
	seedTraining(t, server)

	t.Run("by rating", func(t *testing.T) {
		rr := do(t, server, "GET", "/players", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var players []session.Player
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
		require.Len(t, players, 4)
		assert.Equal(t, "p1", players[0].ID)
		assert.Equal(t, "p3", players[3].ID)
	})

	t.Run("by name", func(t *testing.T) {
		rr := do(t, server, "GET", "/players?sort=name", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var players []session.Player
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
		assert.Equal(t, "Four", players[0].LastName)
	})

	t.Run("unknown sort", func(t *testing.T) {
		rr := do(t, server, "GET", "/players?sort=age", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("search", func(t *testing.T) {
		rr := do(t, server, "GET", "/players?q=anna", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var matches []club.PlayerMatch
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matches))
		require.NotEmpty(t, matches)
		assert.Equal(t, "p1", matches[0].Player.ID)
	})

	t.Run("search with bad limit", func(t *testing.T) {
		rr := do(t, server, "GET", "/players?q=anna&limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTrainingsHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	rr := do(t, server, "POST", "/trainings", map[string]any{"title": "Monday", "court_count": 2, "player_ids": []string{"a", "b"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created training.Training
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.CourtCount)

	rr = do(t, server, "POST", "/trainings", map[string]any{"title": "Nothing", "court_count": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, server, "POST", "/trainings", map[string]any{"title": "Typo", "courts": 2})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown fields are rejected")

	rr = do(t, server, "GET", "/trainings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var all []training.Training
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestSessionNotFound(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	rr := do(t, server, "GET", "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "error")
}

func TestSessionGameFlow(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, mockNotifier, "")
	defer teardown()
	id := seedTraining(t, server)
	base := "/sessions/" + id

	rr := do(t, server, "GET", base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var v board.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, []string{"p1", "p4", "p2", "p3"}, queueOf(v), "queue starts by rating")

	for _, seat := range []struct{ id, half string }{{"p1", "top"}, {"p3", "top"}, {"p4", "bottom"}, {"p2", "bottom"}} {
		decodeOutcome(t, do(t, server, "POST", base+"/courts/1/slots", map[string]string{"playerId": seat.id, "half": seat.half}))
	}

	out := decodeOutcome(t, do(t, server, "POST", base+"/courts/1/start", nil))
	assert.True(t, out.Session.Courts[0].GameInProgress)

	rr = do(t, server, "POST", base+"/courts/1/start", nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "a running game cannot be restarted")

	rr = do(t, server, "DELETE", base+"/courts/1/slots/top/0", nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "slots are locked during a game")

	rr = do(t, server, "POST", base+"/courts/1/finish", map[string]string{"winner": "sideways"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	out = decodeOutcome(t, do(t, server, "POST", base+"/courts/1/finish?dry_run=true", map[string]string{"winner": "top"}))
	assert.Equal(t, []string{"p1", "p3", "p4", "p2"}, queueOf(out.Session))
	require.NotNil(t, out.Game)
	assert.Equal(t, "p1", out.Game.Winners[0].PlayerID)

	require.Len(t, mockNotifier.SendGameResultCalls, 1)
	assert.True(t, mockNotifier.SendGameResultCalls[0].DryRun)

	rr = do(t, server, "GET", "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats []club.PlayerStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 4)
	assert.Equal(t, 1, stats[0].GamesWon)

}

func TestSessionQueueAndCourts(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()
	id := seedTraining(t, server)
	base := "/sessions/" + id

	rr := do(t, server, "POST", base+"/queue", map[string]string{"playerId": "p9", "end": "middle"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	out := decodeOutcome(t, do(t, server, "POST", base+"/queue", map[string]string{"playerId": "p9", "end": "start"}))
	assert.True(t, out.Changed)
	assert.Equal(t, "p9", out.Session.Queue[0].PlayerID)

	out = decodeOutcome(t, do(t, server, "POST", base+"/queue", map[string]string{"playerId": "p9"}))
	assert.False(t, out.Changed, "enqueue is idempotent")

	decodeOutcome(t, do(t, server, "DELETE", base+"/queue/p9", nil))
	rr = do(t, server, "DELETE", base+"/queue/p9", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	out = decodeOutcome(t, do(t, server, "POST", base+"/courts/1/slots", map[string]string{"playerId": "p1", "half": "top"}))
	require.NotNil(t, out.Placement)
	assert.Equal(t, 0, out.Placement.Index)

	out = decodeOutcome(t, do(t, server, "DELETE", base+"/courts/1/slots/top/0?requeue=end", nil))
	assert.Equal(t, "p1", out.Freed)
	assert.Equal(t, []string{"p4", "p2", "p3", "p1"}, queueOf(out.Session))

	rr = do(t, server, "DELETE", base+"/courts/1/slots/top/5", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, server, "DELETE", base+"/courts/x/slots/top/0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	out = decodeOutcome(t, do(t, server, "POST", base+"/courts", nil))
	assert.Equal(t, 2, out.Session.CourtCount)
	out = decodeOutcome(t, do(t, server, "PUT", base+"/courts/2/name", map[string]string{"name": "Centre"}))
	assert.Equal(t, "Centre", out.Session.Courts[1].Name)
	out = decodeOutcome(t, do(t, server, "DELETE", base+"/courts/last", nil))
	assert.Equal(t, 1, out.Session.CourtCount)
	rr = do(t, server, "DELETE", base+"/courts/last", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "the only court stays")

	out = decodeOutcome(t, do(t, server, "PUT", base+"/mode", map[string]string{"mode": "winner-stays"}))
	assert.Equal(t, session.ModeWinnerStays, out.Session.Mode)
	rr = do(t, server, "PUT", base+"/mode", map[string]string{"mode": "chaos"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	out = decodeOutcome(t, do(t, server, "POST", base+"/persist", nil))
	assert.False(t, out.Degraded)
}

func TestGameFinishedPushHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, mockNotifier, "")
	defer teardown()
	seedTraining(t, server)

	game := session.FinishedGame{
		ID:         "game-1",
		SessionID:  "T1",
		CourtID:    1,
		CourtName:  "Court 1",
		Winners:    []session.Slot{{PlayerID: "p1", Name: "Anna One"}, {PlayerID: "p2", Name: "Bo Two"}},
		Losers:     []session.Slot{{PlayerID: "p3", Name: "Carl Three"}, {PlayerID: "p4", Name: "Dina Four"}},
		DurationMs: 600000,
	}
	payload, err := msgpack.Marshal(game)
	require.NoError(t, err)

	push := func(data string) *httptest.ResponseRecorder {
		body := map[string]any{
			"subscription": "projects/club/subscriptions/game-finished",
			"message":      map[string]string{"data": data, "messageId": "1"},
		}
		return do(t, server, "POST", "/pubsub/game-finished", body)
	}

	rr := push(base64.StdEncoding.EncodeToString(payload))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "OK", rr.Body.String())
	require.Len(t, mockNotifier.SendGameResultCalls, 1)
	assert.Equal(t, "Court 1", mockNotifier.SendGameResultCalls[0].Game.CourtName)

	rr = push(base64.StdEncoding.EncodeToString(payload))
	require.Equal(t, http.StatusOK, rr.Code, "redelivery is acknowledged")

	stats, err := server.Store.GetPlayerStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats, 4)
	for _, st := range stats {
		assert.Equal(t, 1, st.GamesPlayed, "a redelivered game is counted once")
	}

	rr = push("%%%not-base64")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = push(base64.StdEncoding.EncodeToString([]byte{0xc1}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(stats []club.PlayerStats) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	server, teardown := setupTestServer(t, mockNotifier, testSlackSigningSecret)
	defer teardown()

	t.Run("signed request", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"command": {"/leaderboard"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"response_type":"in_channel"`)
	})

	t.Run("bad signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"command": {"/leaderboard"}}, "wrong-secret")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unsigned request", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/slack/command/leaderboard", strings.NewReader("command=%2Fleaderboard"))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPlayerSearchCommandHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), testSlackSigningSecret)
	defer teardown()
	seedTraining(t, server)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"found", "dina", "Dina Four (p4)"},
		{"not found", "zzzzzzzz", "No player found"},
		{"usage", "", "Usage: /player <name>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createSlackCommandRequest(t, "/slack/command/player", url.Values{"text": {tt.text}}, testSlackSigningSecret)
			rr := httptest.NewRecorder()
			server.Router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var msg slack.Message
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
			assert.Contains(t, msg.Text, tt.want)
		})
	}
}

func TestSessionEventsHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()
	id := seedTraining(t, server)

	ts := httptest.NewServer(server)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return event, data
			}
		}
	}

	event, data := readEvent()
	assert.Equal(t, events.EventState, event)
	var v board.View
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	assert.Equal(t, 1, v.CourtCount)

	decodeOutcome(t, do(t, server, "POST", "/sessions/"+id+"/courts", nil))
	event, data = readEvent()
	assert.Equal(t, events.EventState, event)
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	assert.Equal(t, 2, v.CourtCount)
}
