package persistence

import (
	"context"
	"sync"
)

// MockRemote is an in-memory Remote for testing. It is safe for concurrent use.
type MockRemote struct {
	mu      sync.Mutex
	records map[string]Record

	// Spies for method calls
	GetFunc    func(ctx context.Context, trainingID string) (Record, error)
	UpsertFunc func(ctx context.Context, rec Record) error

	// Call records
	UpsertCalls []Record
}

var _ Remote = (*MockRemote)(nil)

// NewMockRemote creates a new mock instance.
func NewMockRemote() *MockRemote {
	return &MockRemote{records: make(map[string]Record)}
}

func (m *MockRemote) Get(ctx context.Context, trainingID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, trainingID)
	}
	rec, ok := m.records[trainingID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MockRemote) Upsert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = append(m.UpsertCalls, rec)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, rec)
	}
	m.records[rec.TrainingID] = rec
	return nil
}
