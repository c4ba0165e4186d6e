package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory RowStore used by tests and local
// development without spreadsheet credentials.
type MemoryStore struct {
	mu        sync.RWMutex
	headers   map[string][]string
	resources map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		headers:   make(map[string][]string),
		resources: make(map[string][][]string),
	}
}

// Seed replaces a resource's header and data rows.
func (m *MemoryStore) Seed(resource string, headers []string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[resource] = append([]string(nil), headers...)
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	m.resources[resource] = copied
}

func (m *MemoryStore) Headers(_ context.Context, resource string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	headers, ok := m.headers[resource]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), headers...), nil
}

func (m *MemoryStore) Rows(_ context.Context, resource string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.resources[resource]
	if !ok {
		if _, hasHeaders := m.headers[resource]; hasHeaders {
			return nil, nil
		}
		return nil, ErrNotFound
	}
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	return copied, nil
}

func (m *MemoryStore) Row(_ context.Context, resource string, index int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.resources[resource]
	if !ok || index < 1 || index > len(rows) {
		return nil, ErrNotFound
	}
	return append([]string(nil), rows[index-1]...), nil
}

func (m *MemoryStore) Append(_ context.Context, resource string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.headers[resource]; !ok {
		return ErrNotFound
	}
	m.resources[resource] = append(m.resources[resource], append([]string(nil), values...))
	return nil
}

func (m *MemoryStore) Update(_ context.Context, resource string, index int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.resources[resource]
	if !ok || index < 1 || index > len(rows) {
		return ErrNotFound
	}
	rows[index-1] = append([]string(nil), values...)
	return nil
}

func (m *MemoryStore) Insert(_ context.Context, resource string, index int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.headers[resource]; !ok {
		return ErrNotFound
	}
	rows := m.resources[resource]
	if index < 1 || index > len(rows)+1 {
		return ErrNotFound
	}
	row := append([]string(nil), values...)
	rows = append(rows, nil)
	copy(rows[index:], rows[index-1:])
	rows[index-1] = row
	m.resources[resource] = rows
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, resource string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.resources[resource]
	if !ok || index < 1 || index > len(rows) {
		return ErrNotFound
	}
	m.resources[resource] = append(rows[:index-1], rows[index:]...)
	return nil
}

func (m *MemoryStore) EnsureResource(_ context.Context, resource string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.headers[resource]; !ok {
		m.headers[resource] = append([]string(nil), headers...)
	}
	return nil
}
