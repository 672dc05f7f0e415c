package playerimpl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/domain"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/internal/prefetch"
	"github.com/lumen-social/story-engine/internal/ratelimit"
	"github.com/lumen-social/story-engine/internal/repositories/viewed"
	"github.com/lumen-social/story-engine/internal/selector"
	"github.com/lumen-social/story-engine/pkg/config"
	apperrors "github.com/lumen-social/story-engine/pkg/errors"
	"github.com/lumen-social/story-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	LC         fx.Lifecycle
	Logger     logger.Logger
	Config     *config.Config
	Clock      clockwork.Clock
	Selector   selector.Client
	ViewedRepo viewed.Repository
	Prefetch   prefetch.Hinter
	Limiter    ratelimit.Limiter
}

type ManagerImpl struct {
	Logger     logger.Logger
	Config     *config.Config
	Clock      clockwork.Clock
	Selector   selector.Client
	ViewedRepo viewed.Repository
	Prefetch   prefetch.Hinter
	Limiter    ratelimit.Limiter

	mu       sync.Mutex
	sessions map[string]*session
}

func New(opts Opts) *ManagerImpl {
	m := &ManagerImpl{
		Logger:     opts.Logger,
		Config:     opts.Config,
		Clock:      opts.Clock,
		Selector:   opts.Selector,
		ViewedRepo: opts.ViewedRepo,
		Prefetch:   opts.Prefetch,
		Limiter:    opts.Limiter,
		sessions:   make(map[string]*session),
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.CloseAll()
			return nil
		},
	})

	return m
}

var _ player.Manager = (*ManagerImpl)(nil)

func (m *ManagerImpl) Open(_ context.Context, viewerID string, story domain.Story, siblings []domain.Story, cb player.Callbacks) (player.Session, error) {
	if !m.Limiter.Allow(viewerID) {
		return nil, fmt.Errorf("viewer %s is opening stories too fast: %w", viewerID, apperrors.ErrRateLimited)
	}

	s := newSession(sessionOpts{
		id:       uuid.NewString(),
		viewerID: viewerID,
		story:    story,
		siblings: siblings,
		cb:       cb,
		cfg: sessionConfig{
			tickInterval:     m.Config.Player.TickInterval,
			holdThreshold:    m.Config.Player.HoldThreshold,
			dragThresholdPx:  m.Config.Player.DragThresholdPx,
			prevZoneFraction: m.Config.Player.PrevZoneFraction,
			viewportWidth:    m.Config.Player.ViewportWidth,
		},
		clock:      m.Clock,
		log:        m.Logger,
		viewedRepo: m.ViewedRepo,
		prefetch:   m.Prefetch,
		onRemove:   m.remove,
	})

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.start()
	m.Logger.Info("Player session opened", "session_id", s.id, "viewer_id", viewerID, "story_id", story.ID)
	return s, nil
}

// OpenByID is the story-circle activation path: the eligible ordered set is
// recomputed once and handed to the session as its sibling list.
func (m *ManagerImpl) OpenByID(ctx context.Context, viewerID, storyID string, cb player.Callbacks) (player.Session, error) {
	stories, err := m.Selector.EligibleStories(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute eligible stories: %w", err)
	}

	for _, st := range stories {
		if st.ID == storyID {
			return m.Open(ctx, viewerID, st, stories, cb)
		}
	}
	return nil, fmt.Errorf("story %s is not eligible for viewer %s: %w", storyID, viewerID, apperrors.ErrNotFound)
}

func (m *ManagerImpl) Get(sessionID string) (player.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *ManagerImpl) CloseIdle(olderThan time.Duration) int {
	now := m.Clock.Now()

	m.mu.Lock()
	var victims []*session
	for _, s := range m.sessions {
		if s.idleFor(now) >= olderThan {
			victims = append(victims, s)
		}
	}
	m.mu.Unlock()

	for _, s := range victims {
		m.Logger.Info("Closing idle player session", "session_id", s.id)
		s.Close()
	}
	return len(victims)
}

func (m *ManagerImpl) CloseAll() {
	m.mu.Lock()
	victims := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		victims = append(victims, s)
	}
	m.mu.Unlock()

	for _, s := range victims {
		s.Close()
	}
}

func (m *ManagerImpl) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
