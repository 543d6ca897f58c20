// Package store provides roster.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/fajarisfan/sirs-rme-pro/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the roster as an immutable slice behind a pointer. Replace
// builds the new slice first and publishes it with a single pointer swap,
// so readers see either the whole old roster or the whole new one.
type Memory struct {
	mu      sync.RWMutex
	entries []roster.Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

// ReplaceAll swaps in the new entry set atomically.
func (m *Memory) ReplaceAll(_ context.Context, entries []roster.Entry) error {
	fresh := make([]roster.Entry, len(entries))
	copy(fresh, entries)

	m.mu.Lock()
	m.entries = fresh
	m.mu.Unlock()
	return nil
}

// EntriesForDays returns entries whose Day is in days.
func (m *Memory) EntriesForDays(_ context.Context, days ...int) ([]roster.Entry, error) {
	want := make(map[int]bool, len(days))
	for _, d := range days {
		want[d] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.Entry
	for _, e := range m.entries {
		if want[e.Day] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Count returns the number of stored entries.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Snapshot returns a copy of every stored entry. Test helper.
func (m *Memory) Snapshot() []roster.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]roster.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
