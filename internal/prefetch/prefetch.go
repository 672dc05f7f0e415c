package prefetch

import (
	"github.com/lumen-social/story-engine/internal/domain"
)

// Hinter warms media the viewer is about to reach. Hints are fire-and-forget;
// actually loading media belongs to the hosting runtime.
type Hinter interface {
	HintNext(story domain.Story, fromItem int)
}
