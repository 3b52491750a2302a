package ledger

import "DisclosureNotifier/internal/ports"

// Memory is an in-process ledger with no persistence, used in tests and
// anywhere a durable ledger is injected later.
type Memory struct {
	set *boundedSet
}

var _ ports.Ledger = (*Memory)(nil)

// NewMemory builds an empty in-memory ledger with the given capacity.
func NewMemory(capacity int) *Memory {
	return &Memory{set: newBoundedSet(capacity)}
}

func (m *Memory) Contains(key string) bool { return m.set.contains(key) }

func (m *Memory) Add(key string) { m.set.add(key) }

func (m *Memory) Len() int { return m.set.len() }

// Persist is a no-op for the in-memory ledger.
func (m *Memory) Persist() error { return nil }
