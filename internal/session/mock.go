package session

import (
	"context"
	"errors"
	"sync"
)

// ErrMockPlayerNotFound is returned by MockDirectory for unknown ids.
var ErrMockPlayerNotFound = errors.New("player not found")

// MockStore is an in-memory Store for tests. It is safe for concurrent use.
type MockStore struct {
	mu     sync.Mutex
	states map[string]State

	// Spies for method calls
	LoadFunc func(ctx context.Context, sessionID string) (*State, error)
	SaveFunc func(ctx context.Context, sessionID string, state State) (bool, error)

	// Call records
	SaveCalls []State
	LoadCalls []string
}

// NewMockStore creates a new mock instance.
func NewMockStore() *MockStore {
	return &MockStore{states: make(map[string]State)}
}

// Put stores a state as if it had been persisted earlier.
func (m *MockStore) Put(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SessionID] = state.Clone()
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = append(m.LoadCalls, sessionID)
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, sessionID)
	}
	st, ok := m.states[sessionID]
	if !ok {
		return nil, nil
	}
	cp := st.Clone()
	return &cp, nil
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state State) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, state.Clone())
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sessionID, state)
	}
	m.states[sessionID] = state.Clone()
	return false, nil
}

// Saves returns the number of Save calls.
func (m *MockStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SaveCalls)
}

// MockDirectory is an in-memory Directory for tests.
type MockDirectory struct {
	mu      sync.Mutex
	players map[string]Player

	// Err, when set, fails every lookup.
	Err error

	// Spies for method calls
	GetPlayerFunc func(ctx context.Context, playerID string) (Player, error)
}

// NewMockDirectory creates a directory holding the given players.
func NewMockDirectory(players ...Player) *MockDirectory {
	d := &MockDirectory{players: make(map[string]Player)}
	for _, p := range players {
		d.players[p.ID] = p
	}
	return d
}

// Set adds or replaces a player.
func (d *MockDirectory) Set(p Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[p.ID] = p
}

func (d *MockDirectory) GetPlayer(ctx context.Context, playerID string) (Player, error) {
	if d.GetPlayerFunc != nil {
		return d.GetPlayerFunc(ctx, playerID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return Player{}, d.Err
	}
	p, ok := d.players[playerID]
	if !ok {
		return Player{}, ErrMockPlayerNotFound
	}
	return p, nil
}

func (d *MockDirectory) GetPlayers(ctx context.Context, playerIDs []string) ([]Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	var out []Player
	for _, id := range playerIDs {
		if p, ok := d.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
