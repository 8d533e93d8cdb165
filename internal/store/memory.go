package store

import (
	"context"
	"sync"
)

// Memory keeps the snapshot in process memory.
type Memory struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return nil, ErrNoSnapshot
	}

	return clone(m.snap), nil
}

func (m *Memory) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = clone(snap)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = nil
	return nil
}

func clone(snap *Snapshot) *Snapshot {
	if snap == nil {
		return nil
	}

	out := *snap
	out.Resumes = append(snap.Resumes[:0:0], snap.Resumes...)
	return &out
}
