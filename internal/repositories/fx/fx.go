package fx

import (
	"github.com/lumen-social/story-engine/internal/repositories/following"
	"github.com/lumen-social/story-engine/internal/repositories/story"
	"github.com/lumen-social/story-engine/internal/repositories/viewed"
	"go.uber.org/fx"
)

var Module = fx.Options(
	story.Module,
	viewed.Module,
	following.Module,
)
