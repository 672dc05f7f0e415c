package story

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/domain"
)

// Memory keeps the candidate set in process memory. There is no durable
// backend; stories live for one process lifetime and are swept once expired.
type Memory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Story
	clock clockwork.Clock
}

func NewMemory(clock clockwork.Clock) *Memory {
	return &Memory{
		byID:  make(map[string]domain.Story),
		clock: clock,
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Upsert(_ context.Context, story domain.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[story.ID]; !ok {
		m.order = append(m.order, story.ID)
	}
	m.byID[story.ID] = story
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	story, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &story, nil
}

func (m *Memory) ListCandidates(_ context.Context) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Story, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *Memory) DeleteExpired(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	kept := m.order[:0]
	deleted := 0
	for _, id := range m.order {
		if now.Sub(m.byID[id].CreatedAt) >= olderThan {
			delete(m.byID, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return deleted, nil
}
