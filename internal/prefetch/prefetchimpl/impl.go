package prefetchimpl

import (
	"context"

	"github.com/lumen-social/story-engine/internal/domain"
	"github.com/lumen-social/story-engine/internal/prefetch"
	"github.com/lumen-social/story-engine/pkg/config"
	"github.com/lumen-social/story-engine/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

// FetchFunc receives the URL of a media resource worth warming.
type FetchFunc func(url string)

type Opts struct {
	fx.In

	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
	Fetch  FetchFunc `optional:"true"`
}

type HinterImpl struct {
	Logger    logger.Logger
	pool      *ants.Pool
	fetch     FetchFunc
	lookahead int
}

func New(opts Opts) (*HinterImpl, error) {
	pool, err := ants.NewPool(opts.Config.Prefetch.Workers,
		ants.WithPreAlloc(true),
		ants.WithNonblocking(true),
	)
	if err != nil {
		return nil, err
	}

	fetch := opts.Fetch
	if fetch == nil {
		fetch = func(url string) {
			opts.Logger.Debug("Prefetch hint", "url", url)
		}
	}

	h := &HinterImpl{
		Logger:    opts.Logger,
		pool:      pool,
		fetch:     fetch,
		lookahead: opts.Config.Prefetch.Lookahead,
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Release()
			return nil
		},
	})

	return h, nil
}

var _ prefetch.Hinter = (*HinterImpl)(nil)

// HintNext submits the next few item URLs to the pool. A full pool drops the
// hint; prefetching is best effort.
func (h *HinterImpl) HintNext(story domain.Story, fromItem int) {
	for i := fromItem + 1; i < len(story.Items) && i <= fromItem+h.lookahead; i++ {
		url := story.Items[i].URL
		if err := h.pool.Submit(func() { h.fetch(url) }); err != nil {
			h.Logger.Debug("Prefetch hint dropped", "url", url, "error", err)
		}
	}
}
