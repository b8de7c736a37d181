package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	sessionsOpened   int
	gamesStarted     int
	gamesFinished    int
	gamesCancelled   int
	gameDurations    []float64
	persistDegraded  int
	persistFailed    int
	persistDurations []float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncSessionsOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsOpened++
}

func (m *Mock) IncGamesStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesStarted++
}

func (m *Mock) IncGamesFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesFinished++
}

func (m *Mock) IncGamesCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesCancelled++
}

func (m *Mock) ObserveGameDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameDurations = append(m.gameDurations, seconds)
}

func (m *Mock) IncPersistDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistDegraded++
}

func (m *Mock) IncPersistFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistFailed++
}

func (m *Mock) ObservePersistDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistDurations = append(m.persistDurations, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SessionsOpened returns the number of times IncSessionsOpened was called.
func (m *Mock) SessionsOpened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsOpened
}

// GamesStarted returns the number of times IncGamesStarted was called.
func (m *Mock) GamesStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesStarted
}

// GamesFinished returns the number of times IncGamesFinished was called.
func (m *Mock) GamesFinished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesFinished
}

// GamesCancelled returns the number of times IncGamesCancelled was called.
func (m *Mock) GamesCancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesCancelled
}

// PersistDegraded returns the number of times IncPersistDegraded was called.
func (m *Mock) PersistDegraded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistDegraded
}

// PersistFailed returns the number of times IncPersistFailed was called.
func (m *Mock) PersistFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistFailed
}

// PersistDurations returns every observed save duration.
func (m *Mock) PersistDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.persistDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
