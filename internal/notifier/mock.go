package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/session"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendGameResultFunc            func(game session.FinishedGame, dryRun bool) error
	SendPersistenceWarningFunc    func(sessionID string, dryRun bool) error
	FormatLeaderboardResponseFunc func(stats []club.PlayerStats) (any, error)

	// Call records
	SendGameResultCalls []struct {
		Game   session.FinishedGame
		DryRun bool
	}
	SendPersistenceWarningCalls []string
	SendLeaderboardCalls        [][]club.PlayerStats
	LastLeaderboardResponse     any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameResultCalls = nil
	m.SendPersistenceWarningCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendGameResult(game session.FinishedGame, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameResultCalls = append(m.SendGameResultCalls, struct {
		Game   session.FinishedGame
		DryRun bool
	}{game, dryRun})
	if m.SendGameResultFunc != nil {
		return m.SendGameResultFunc(game, dryRun)
	}
	return nil
}

func (m *Mock) SendPersistenceWarning(sessionID string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPersistenceWarningCalls = append(m.SendPersistenceWarningCalls, sessionID)
	if m.SendPersistenceWarningFunc != nil {
		return m.SendPersistenceWarningFunc(sessionID, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(stats []club.PlayerStats, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, stats)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(stats)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	m.LastLeaderboardResponse = stats
	return stats, nil
}

// GameResults returns the number of SendGameResult calls.
func (m *Mock) GameResults() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendGameResultCalls)
}

// PersistenceWarnings returns the number of SendPersistenceWarning calls.
func (m *Mock) PersistenceWarnings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendPersistenceWarningCalls)
}
