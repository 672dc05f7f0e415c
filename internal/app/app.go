package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/janitor"
	"github.com/lumen-social/story-engine/internal/janitor/janitorimpl"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/internal/player/playerimpl"
	"github.com/lumen-social/story-engine/internal/prefetch"
	"github.com/lumen-social/story-engine/internal/prefetch/prefetchimpl"
	"github.com/lumen-social/story-engine/internal/ratelimit"
	repositories "github.com/lumen-social/story-engine/internal/repositories/fx"
	"github.com/lumen-social/story-engine/internal/selector"
	"github.com/lumen-social/story-engine/internal/selector/selectorimpl"
	"github.com/lumen-social/story-engine/pkg/config"
	"github.com/lumen-social/story-engine/pkg/logger"
	"go.uber.org/fx"
)

var App = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		func() clockwork.Clock { return clockwork.NewRealClock() },
		func(cfg *config.Config) ratelimit.Limiter {
			return ratelimit.NewInMemoryLimiter(cfg.Session.OpensPerMinute, time.Minute, cfg.Session.OpenBurst)
		},
	),
	fx.Provide(
		fx.Annotate(
			selectorimpl.New,
			fx.As(new(selector.Client)),
		), fx.Annotate(
			playerimpl.New,
			fx.As(new(player.Manager)),
		), fx.Annotate(
			prefetchimpl.New,
			fx.As(new(prefetch.Hinter)),
		),
		fx.Annotate(
			janitorimpl.New,
			fx.As(new(janitor.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, jClient janitor.Client) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, c := context.WithCancel(context.Background())
			cancel = c

			go startHttpServer(log, cfg)

			if err := jClient.ScheduleStorySweep(ctx); err != nil {
				log.Error("Failed to schedule story sweep", "error", err)
			}
			if err := jClient.ScheduleSessionSweep(ctx); err != nil {
				log.Error("Failed to schedule session sweep", "error", err)
			}

			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
