package selector

import (
	"context"

	"github.com/lumen-social/story-engine/internal/domain"
)

// Client computes which stories a viewer may open and in what order. The
// ordered result doubles as the sibling list handed to the player, so the
// player can chain next/previous without recomputing eligibility.
type Client interface {
	EligibleStories(ctx context.Context, viewerID string) ([]domain.Story, error)
	BuildTray(ctx context.Context, viewerID string) ([]domain.TrayEntry, error)
}
