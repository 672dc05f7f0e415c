package viewed

import (
	"context"
	"sync"
)

type Memory struct {
	mu       sync.RWMutex
	byViewer map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		byViewer: make(map[string]map[string]struct{}),
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Add(_ context.Context, viewerID, storyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.byViewer[viewerID]
	if !ok {
		set = make(map[string]struct{})
		m.byViewer[viewerID] = set
	}
	set[storyID] = struct{}{}
	return nil
}

func (m *Memory) Contains(_ context.Context, viewerID, storyID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byViewer[viewerID][storyID]
	return ok, nil
}

func (m *Memory) IDs(_ context.Context, viewerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.byViewer[viewerID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}
