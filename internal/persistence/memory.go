package persistence

import "sync"

// memory is the map-backed Local tier. Values are encoded bytes so a stored
// state never aliases the engine's live state.
type memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory creates an empty Local tier.
func NewMemory() Local {
	return &memory{records: make(map[string][]byte)}
}

func (m *memory) Get(trainingID string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[trainingID]
	return data, ok
}

func (m *memory) Put(trainingID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[trainingID] = data
}
