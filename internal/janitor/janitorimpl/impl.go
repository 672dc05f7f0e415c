package janitorimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/lumen-social/story-engine/internal/janitor"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/internal/repositories/story"
	"github.com/lumen-social/story-engine/pkg/config"
	"github.com/lumen-social/story-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	StoryRepo story.Repository
	Manager   player.Manager
	Logger    logger.Logger
	Config    *config.Config
}

type JanitorImpl struct {
	StoryRepo story.Repository
	Manager   player.Manager
	Logger    logger.Logger
	Config    *config.Config
}

func New(opts Opts) *JanitorImpl {
	return &JanitorImpl{
		StoryRepo: opts.StoryRepo,
		Manager:   opts.Manager,
		Logger:    opts.Logger,
		Config:    opts.Config,
	}
}

var _ janitor.Client = (*JanitorImpl)(nil)

// ScheduleStorySweep drops stories that fell out of the freshness window so
// the selector never has to page past them.
func (j *JanitorImpl) ScheduleStorySweep(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create story sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(j.Config.Stories.SweepInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				j.Logger.Info("Context cancelled, stopping story sweep job")
				return
			}

			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()

			deleted, err := j.StoryRepo.DeleteExpired(sweepCtx, j.Config.Stories.TTL)
			if err != nil {
				j.Logger.Error("Failed to sweep expired stories", "error", err)
				return
			}
			if deleted > 0 {
				j.Logger.Info("Swept expired stories", "deleted", deleted)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule story sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		j.Logger.Info("Stopping story sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			j.Logger.Error("Failed to shut down story sweep scheduler", "error", err)
		}
	}()

	return nil
}

// ScheduleSessionSweep closes player sessions with no activity for the
// configured idle timeout.
func (j *JanitorImpl) ScheduleSessionSweep(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create session sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(j.Config.Session.SweepInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				j.Logger.Info("Context cancelled, stopping session sweep job")
				return
			}

			closed := j.Manager.CloseIdle(j.Config.Session.IdleTimeout)
			if closed > 0 {
				j.Logger.Info("Closed idle player sessions", "closed", closed)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		j.Logger.Info("Stopping session sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			j.Logger.Error("Failed to shut down session sweep scheduler", "error", err)
		}
	}()

	return nil
}
