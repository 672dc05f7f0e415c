package config

import (
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Player struct {
		TickInterval     time.Duration `env:"PLAYER_TICK_INTERVAL" env-default:"100ms"`
		HoldThreshold    time.Duration `env:"PLAYER_HOLD_THRESHOLD" env-default:"250ms"`
		DragThresholdPx  float64       `env:"PLAYER_DRAG_THRESHOLD_PX" env-default:"10"`
		PrevZoneFraction float64       `env:"PLAYER_PREV_ZONE_FRACTION" env-default:"0.3"`
		ViewportWidth    float64       `env:"PLAYER_VIEWPORT_WIDTH" env-default:"390"`
	}
	Stories struct {
		TTL           time.Duration `env:"STORIES_TTL" env-default:"24h"`
		SweepInterval time.Duration `env:"STORIES_SWEEP_INTERVAL" env-default:"15m"`
	}
	Session struct {
		IdleTimeout    time.Duration `env:"SESSION_IDLE_TIMEOUT" env-default:"10m"`
		SweepInterval  time.Duration `env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
		OpensPerMinute int           `env:"SESSION_OPENS_PER_MINUTE" env-default:"60"`
		OpenBurst      int           `env:"SESSION_OPEN_BURST" env-default:"10"`
	}
	Prefetch struct {
		Workers   int `env:"PREFETCH_WORKERS" env-default:"4"`
		Lookahead int `env:"PREFETCH_LOOKAHEAD" env-default:"2"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
