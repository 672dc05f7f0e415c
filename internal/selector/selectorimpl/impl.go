package selectorimpl

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/domain"
	"github.com/lumen-social/story-engine/internal/repositories/following"
	"github.com/lumen-social/story-engine/internal/repositories/story"
	"github.com/lumen-social/story-engine/internal/repositories/viewed"
	"github.com/lumen-social/story-engine/internal/selector"
	"github.com/lumen-social/story-engine/pkg/config"
	"github.com/lumen-social/story-engine/pkg/formatter"
	"github.com/lumen-social/story-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	StoryRepo     story.Repository
	FollowingRepo following.Repository
	ViewedRepo    viewed.Repository
	Logger        logger.Logger
	Config        *config.Config
	Clock         clockwork.Clock
}

type SelectorImpl struct {
	StoryRepo     story.Repository
	FollowingRepo following.Repository
	ViewedRepo    viewed.Repository
	Logger        logger.Logger
	Config        *config.Config
	Clock         clockwork.Clock
}

func New(opts Opts) *SelectorImpl {
	return &SelectorImpl{
		StoryRepo:     opts.StoryRepo,
		FollowingRepo: opts.FollowingRepo,
		ViewedRepo:    opts.ViewedRepo,
		Logger:        opts.Logger,
		Config:        opts.Config,
		Clock:         opts.Clock,
	}
}

var _ selector.Client = (*SelectorImpl)(nil)

func (s *SelectorImpl) EligibleStories(ctx context.Context, viewerID string) ([]domain.Story, error) {
	candidates, err := s.StoryRepo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate stories: %w", err)
	}

	followed, err := s.FollowingRepo.ListFollowed(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed users: %w", err)
	}

	viewedIDs, err := s.ViewedRepo.IDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewed stories: %w", err)
	}

	filtered := Filter(candidates, viewerID, toSet(followed), s.Clock.Now(), s.Config.Stories.TTL)
	return Order(filtered, toSet(viewedIDs)), nil
}

// BuildTray renders the ordered eligible set as story circles. The viewer's
// create/open-own-story affordance is always first, ahead of the partition.
func (s *SelectorImpl) BuildTray(ctx context.Context, viewerID string) ([]domain.TrayEntry, error) {
	stories, err := s.EligibleStories(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TrayEntry, 0, len(stories)+1)
	entries = append(entries, domain.TrayEntry{
		Author: domain.User{ID: viewerID},
		Self:   true,
	})

	for _, st := range stories {
		isViewed, err := s.ViewedRepo.Contains(ctx, viewerID, st.ID)
		if err != nil {
			s.Logger.Warn("Failed to check viewed state, rendering as unviewed", "story_id", st.ID, "error", err)
		}
		entries = append(entries, domain.TrayEntry{
			StoryID:       st.ID,
			Author:        st.Author,
			Viewed:        isViewed,
			Verified:      st.Author.Verified(),
			FollowerLabel: formatter.FormatFollowerCount(st.Author.FollowerCount),
		})
	}

	return entries, nil
}
