package club

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mauv0809/courtside/internal/session"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu      sync.Mutex
	players map[string]session.Player
	stats   map[string]*PlayerStats
	games   map[string]struct{}

	// Spies for method calls
	GetPlayerFunc        func(ctx context.Context, playerID string) (session.Player, error)
	GetPlayersFunc       func(ctx context.Context, playerIDs []string) ([]session.Player, error)
	RecordGameResultFunc func(ctx context.Context, gameID string, winnerIDs, loserIDs []string) error

	// Call records
	GetPlayersCalls       [][]string
	UpsertPlayerCalls     []session.Player
	RecordGameResultCalls []struct {
		GameID    string
		WinnerIDs []string
		LoserIDs  []string
	}
}

var _ ClubStore = (*MockStore)(nil)

// NewMock creates a new mock instance holding the given players.
func NewMock(players ...session.Player) *MockStore {
	m := &MockStore{
		players: make(map[string]session.Player),
		stats:   make(map[string]*PlayerStats),
		games:   make(map[string]struct{}),
	}
	for _, p := range players {
		m.players[p.ID] = p
	}
	return m
}

func (m *MockStore) GetPlayer(ctx context.Context, playerID string) (session.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, playerID)
	}
	p, ok := m.players[playerID]
	if !ok {
		return session.Player{}, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	return p, nil
}

func (m *MockStore) GetPlayers(ctx context.Context, playerIDs []string) ([]session.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayersCalls = append(m.GetPlayersCalls, playerIDs)
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(ctx, playerIDs)
	}
	var out []session.Player
	for _, id := range playerIDs {
		if p, ok := m.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockStore) ListPlayers(ctx context.Context, by SortBy) ([]session.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	switch by {
	case SortByRating:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].ID < out[j].ID
		})
	case SortByLastName:
		sort.Slice(out, func(i, j int) bool {
			li, lj := strings.ToLower(out[i].LastName), strings.ToLower(out[j].LastName)
			if li != lj {
				return li < lj
			}
			return out[i].ID < out[j].ID
		})
	default:
		return nil, fmt.Errorf("unknown sort order %q", by)
	}
	return out, nil
}

func (m *MockStore) SearchPlayers(ctx context.Context, query string, limit int) ([]PlayerMatch, error) {
	players, err := m.ListPlayers(ctx, SortByLastName)
	if err != nil {
		return nil, err
	}
	return rankPlayers(query, players, limit), nil
}

func (m *MockStore) UpsertPlayer(ctx context.Context, player session.Player) error {
	return m.UpsertPlayers(ctx, []session.Player{player})
}

func (m *MockStore) UpsertPlayers(ctx context.Context, players []session.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range players {
		m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, p)
		m.players[p.ID] = p
	}
	return nil
}

func (m *MockStore) RecordGameResult(ctx context.Context, gameID string, winnerIDs, loserIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordGameResultCalls = append(m.RecordGameResultCalls, struct {
		GameID    string
		WinnerIDs []string
		LoserIDs  []string
	}{gameID, winnerIDs, loserIDs})
	if m.RecordGameResultFunc != nil {
		return m.RecordGameResultFunc(ctx, gameID, winnerIDs, loserIDs)
	}
	if gameID != "" {
		if _, seen := m.games[gameID]; seen {
			return nil
		}
		m.games[gameID] = struct{}{}
	}
	bump := func(id string, won bool) {
		p, ok := m.players[id]
		if !ok {
			return
		}
		st, ok := m.stats[id]
		if !ok {
			st = &PlayerStats{PlayerID: id, PlayerName: p.DisplayName(), Rating: p.Rating}
			m.stats[id] = st
		}
		st.GamesPlayed++
		if won {
			st.GamesWon++
		} else {
			st.GamesLost++
		}
		st.WinPercentage = float64(st.GamesWon) / float64(st.GamesPlayed) * 100
	}
	for _, id := range winnerIDs {
		bump(id, true)
	}
	for _, id := range loserIDs {
		bump(id, false)
	}
	return nil
}

func (m *MockStore) GetPlayerStats(ctx context.Context) ([]PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlayerStats, 0, len(m.stats))
	for _, st := range m.stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GamesWon != out[j].GamesWon {
			return out[i].GamesWon > out[j].GamesWon
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = make(map[string]session.Player)
	m.stats = make(map[string]*PlayerStats)
	m.games = make(map[string]struct{})
	return nil
}

// RecordedGames returns how many times RecordGameResult was called.
func (m *MockStore) RecordedGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordGameResultCalls)
}
