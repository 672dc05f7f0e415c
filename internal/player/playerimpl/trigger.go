package playerimpl

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/pkg/logger"
)

// advanceTrigger drives progress for exactly one active item. The session
// picks the variant by media type: images run on a repeating tick, videos on
// the media element's event stream. Stop fully detaches the trigger; the
// session's generation counter additionally fences any callback already in
// flight when Stop raced it.
type advanceTrigger interface {
	Start()
	Stop()
	HandleVideo(ev player.VideoEvent)
}

type imageTrigger struct {
	clock    clockwork.Clock
	interval time.Duration
	log      logger.Logger
	tick     func()
	done     chan struct{}
	stopOnce sync.Once
}

func newImageTrigger(clock clockwork.Clock, interval time.Duration, log logger.Logger, tick func()) *imageTrigger {
	return &imageTrigger{
		clock:    clock,
		interval: interval,
		log:      log,
		tick:     tick,
		done:     make(chan struct{}),
	}
}

var _ advanceTrigger = (*imageTrigger)(nil)

func (t *imageTrigger) Start() {
	ticker := t.clock.NewTicker(t.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.Chan():
				t.tick()
			}
		}
	}()
}

func (t *imageTrigger) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *imageTrigger) HandleVideo(ev player.VideoEvent) {
	t.log.Debug("Video event for an image item ignored", "kind", ev.Kind)
}

type videoTrigger struct {
	log          logger.Logger
	onTimeUpdate func(pos, dur time.Duration)
	onEnded      func()
}

func newVideoTrigger(log logger.Logger, onTimeUpdate func(pos, dur time.Duration), onEnded func()) *videoTrigger {
	return &videoTrigger{
		log:          log,
		onTimeUpdate: onTimeUpdate,
		onEnded:      onEnded,
	}
}

var _ advanceTrigger = (*videoTrigger)(nil)

func (t *videoTrigger) Start() {}
func (t *videoTrigger) Stop()  {}

func (t *videoTrigger) HandleVideo(ev player.VideoEvent) {
	switch ev.Kind {
	case player.VideoTimeUpdate:
		t.onTimeUpdate(ev.Position, ev.Duration)
	case player.VideoEnded:
		t.onEnded()
	case player.VideoPlayFailed:
		// Autoplay rejection and friends: recoverable, the item just sits
		// until the user navigates or the host retries play.
		t.log.Warn("Video playback rejected, holding current item")
	default:
		t.log.Debug("Unknown video event ignored", "kind", ev.Kind)
	}
}
