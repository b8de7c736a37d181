package training

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockStore is a mock implementation of the TrainingStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu        sync.Mutex
	trainings map[string]Training
	nextID    int

	// Spies for method calls
	GetFunc func(ctx context.Context, id string) (*Training, error)

	// Call records
	GetCalls []string
}

var _ TrainingStore = (*MockStore)(nil)

// NewMock creates a new mock instance holding the given trainings.
func NewMock(trainings ...Training) *MockStore {
	m := &MockStore{trainings: make(map[string]Training)}
	for _, t := range trainings {
		m.trainings[t.ID] = t
	}
	return m
}

func (m *MockStore) Create(ctx context.Context, title string, startsAt time.Time, courtCount int, playerIDs []string) (*Training, error) {
	if courtCount < 1 {
		return nil, fmt.Errorf("court count %d: %w", courtCount, ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := Training{
		ID:         fmt.Sprintf("training-%d", m.nextID),
		Title:      title,
		StartsAt:   startsAt.UTC(),
		CourtCount: courtCount,
		PlayerIDs:  uniqueIDs(playerIDs),
		CreatedAt:  time.Now().UTC(),
	}
	m.trainings[t.ID] = t
	return &t, nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*Training, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, id)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	t, ok := m.trainings[id]
	if !ok {
		return nil, fmt.Errorf("training %s: %w", id, ErrNotFound)
	}
	t.PlayerIDs = append([]string(nil), t.PlayerIDs...)
	return &t, nil
}

func (m *MockStore) List(ctx context.Context) ([]Training, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Training, 0, len(m.trainings))
	for _, t := range m.trainings {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.After(out[j].StartsAt)
	})
	return out, nil
}

func (m *MockStore) SetPlayers(ctx context.Context, id string, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trainings[id]
	if !ok {
		return fmt.Errorf("training %s: %w", id, ErrNotFound)
	}
	t.PlayerIDs = uniqueIDs(playerIDs)
	m.trainings[id] = t
	return nil
}
