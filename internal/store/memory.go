package store

import (
	"context"
	"strconv"
	"sync"
)

// Memory is an in-memory Repository. It backs the session when durable
// storage is unavailable, so the client degrades to non-persistent state
// instead of failing.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *Memory) set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// LoadIdentity returns the stored user identifier, or "" if none.
func (m *Memory) LoadIdentity(_ context.Context) (string, error) {
	return m.get(KeyUserID), nil
}

// SaveIdentity overwrites the stored user identifier.
func (m *Memory) SaveIdentity(_ context.Context, id string) error {
	m.set(KeyUserID, id)
	return nil
}

// LoadScore returns the stored score, or 0 if none.
func (m *Memory) LoadScore(_ context.Context) (int, error) {
	raw := m.get(KeyUserScore)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// SaveScore overwrites the stored score.
func (m *Memory) SaveScore(_ context.Context, value int) error {
	m.set(KeyUserScore, strconv.Itoa(value))
	return nil
}

// LoadConversationID returns the stored conversation id, or "" if none.
func (m *Memory) LoadConversationID(_ context.Context) (string, error) {
	return m.get(KeyConversationID), nil
}

// SaveConversationID overwrites the stored conversation id.
func (m *Memory) SaveConversationID(_ context.Context, id string) error {
	m.set(KeyConversationID, id)
	return nil
}

// ClearConversationID removes the stored conversation id.
func (m *Memory) ClearConversationID(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyConversationID)
	return nil
}

// Ping always succeeds for the in-memory repository.
func (m *Memory) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory repository.
func (m *Memory) Close() error { return nil }
