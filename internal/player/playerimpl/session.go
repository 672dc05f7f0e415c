package playerimpl

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/domain"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/internal/prefetch"
	"github.com/lumen-social/story-engine/internal/repositories/viewed"
	"github.com/lumen-social/story-engine/pkg/logger"
)

type sessionConfig struct {
	tickInterval     time.Duration
	holdThreshold    time.Duration
	dragThresholdPx  float64
	prevZoneFraction float64
	viewportWidth    float64
}

type pressState struct {
	x, y    float64
	at      time.Time
	dragged bool
}

type sessionOpts struct {
	id         string
	viewerID   string
	story      domain.Story
	siblings   []domain.Story
	cb         player.Callbacks
	cfg        sessionConfig
	clock      clockwork.Clock
	log        logger.Logger
	viewedRepo viewed.Repository
	prefetch   prefetch.Hinter
	onRemove   func(id string)
}

// session is the playback state machine for one open viewer. All state is
// guarded by mu; callbacks collected under the lock run after it is released,
// so a callback may safely call back into the session.
type session struct {
	id         string
	viewerID   string
	cfg        sessionConfig
	clock      clockwork.Clock
	log        logger.Logger
	viewedRepo viewed.Repository
	prefetch   prefetch.Hinter
	cb         player.Callbacks
	ctx        context.Context
	onRemove   func(id string)

	mu         sync.Mutex
	siblings   []domain.Story
	storyIndex int
	itemIndex  int
	elapsed    time.Duration
	videoPos   time.Duration
	videoDur   time.Duration
	paused     bool
	closed     bool
	ended      bool
	gen        uint64
	trigger    advanceTrigger
	press      *pressState
	lastActive time.Time
}

func newSession(opts sessionOpts) *session {
	s := &session{
		id:         opts.id,
		viewerID:   opts.viewerID,
		cfg:        opts.cfg,
		clock:      opts.clock,
		log:        opts.log.With("session_id", opts.id, "viewer_id", opts.viewerID),
		viewedRepo: opts.viewedRepo,
		prefetch:   opts.prefetch,
		cb:         opts.cb,
		ctx:        context.Background(),
		onRemove:   opts.onRemove,
		siblings:   opts.siblings,
		lastActive: opts.clock.Now(),
	}

	start := -1
	for i, sib := range s.siblings {
		if sib.ID == opts.story.ID {
			start = i
			break
		}
	}
	if start < 0 {
		s.log.Warn("Story not present in sibling list, playing it standalone", "story_id", opts.story.ID)
		s.siblings = []domain.Story{opts.story}
		start = 0
	}
	s.storyIndex = start
	return s
}

var _ player.Session = (*session)(nil)

// start activates the initial story: marks it viewed and begins item 0.
func (s *session) start() {
	s.mu.Lock()
	notify := s.activateStoryLocked(s.storyIndex, false)
	s.mu.Unlock()
	runAll(notify)
}

func (s *session) ID() string { return s.id }

func (s *session) Press(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastActive = s.clock.Now()
	s.press = &pressState{x: x, y: y, at: s.clock.Now()}
	s.paused = true
}

func (s *session) Move(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.press == nil {
		return
	}
	if math.Hypot(x-s.press.x, y-s.press.y) > s.cfg.dragThresholdPx {
		s.press.dragged = true
	}
}

func (s *session) Release(x, y float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastActive = s.clock.Now()
	ps := s.press
	s.press = nil
	s.paused = false

	var notify []func()
	if ps != nil && s.isTapLocked(ps, x, y) {
		if x < s.cfg.viewportWidth*s.cfg.prevZoneFraction {
			notify = s.advanceItemLocked(-1)
		} else {
			notify = s.advanceItemLocked(+1)
		}
	}
	s.mu.Unlock()
	runAll(notify)
}

// isTapLocked distinguishes a brief tap, which navigates, from a sustained
// press, which only pauses. A press held past the hold threshold or moved past
// the drag threshold never navigates.
func (s *session) isTapLocked(ps *pressState, x, y float64) bool {
	if ps.dragged {
		return false
	}
	if math.Hypot(x-ps.x, y-ps.y) > s.cfg.dragThresholdPx {
		return false
	}
	return s.clock.Since(ps.at) < s.cfg.holdThreshold
}

func (s *session) Next() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	notify := s.advanceItemLocked(+1)
	s.mu.Unlock()
	runAll(notify)
}

func (s *session) Prev() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	notify := s.advanceItemLocked(-1)
	s.mu.Unlock()
	runAll(notify)
}

// SetStory handles the hosting shell replacing the presented story. Identity
// is compared first; a matching id is a no-op, anything else resets playback
// to item 0 of the new story.
func (s *session) SetStory(story domain.Story) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastActive = s.clock.Now()
	if s.currentStoryLocked().ID == story.ID {
		s.mu.Unlock()
		return
	}

	idx := -1
	for i, sib := range s.siblings {
		if sib.ID == story.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Warn("Replacement story not in sibling list, playing it standalone", "story_id", story.ID)
		s.siblings = []domain.Story{story}
		idx = 0
	}
	notify := s.activateStoryLocked(idx, false)
	s.mu.Unlock()
	runAll(notify)
}

func (s *session) HandleVideoEvent(ev player.VideoEvent) {
	s.mu.Lock()
	tr := s.trigger
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
	if tr != nil {
		tr.HandleVideo(ev)
	}
}

func (s *session) OpenAuthorProfile() {
	s.mu.Lock()
	author := s.currentStoryLocked().Author
	cb := s.cb.OnOpenUserProfile
	s.mu.Unlock()
	if cb != nil {
		cb(author)
	}
}

func (s *session) Snapshot() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return player.State{
		SessionID:       s.id,
		ViewerID:        s.viewerID,
		StoryID:         s.currentStoryLocked().ID,
		StoryIndex:      s.storyIndex,
		ItemIndex:       s.itemIndex,
		ProgressPercent: s.progressLocked(),
		Paused:          s.paused,
		Closed:          s.closed,
	}
}

func (s *session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTriggerLocked()
	cb := s.cb.OnClose
	remove := s.onRemove
	s.mu.Unlock()

	if remove != nil {
		remove(s.id)
	}
	if cb != nil {
		cb()
	}
}

func (s *session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *session) currentStoryLocked() domain.Story {
	return s.siblings[s.storyIndex]
}

func (s *session) currentItemLocked() (domain.StoryItem, bool) {
	items := s.currentStoryLocked().Items
	if s.itemIndex < 0 || s.itemIndex >= len(items) {
		return domain.StoryItem{}, false
	}
	return items[s.itemIndex], true
}

func (s *session) progressLocked() float64 {
	if s.ended {
		return 100
	}
	item, ok := s.currentItemLocked()
	if !ok {
		return 0
	}
	var pct float64
	switch item.MediaType {
	case domain.MediaTypeVideo:
		if s.videoDur <= 0 {
			return 0
		}
		pct = float64(s.videoPos) / float64(s.videoDur) * 100
	default:
		dur := item.Duration()
		if dur <= 0 {
			return 0
		}
		pct = float64(s.elapsed) / float64(dur) * 100
	}
	return math.Min(100, math.Max(0, pct))
}

// advanceItemLocked is goToNextItem/goToPrevItem: bounded by the item list,
// overflow delegates to sibling navigation. A story with no items defends by
// deferring straight to the sibling level.
func (s *session) advanceItemLocked(dir int) []func() {
	if s.closed {
		return nil
	}
	items := s.currentStoryLocked().Items
	if len(items) == 0 {
		return s.advanceStoryLocked(dir)
	}
	if dir > 0 {
		if s.itemIndex < len(items)-1 {
			return s.setItemLocked(s.itemIndex + 1)
		}
		return s.advanceStoryLocked(+1)
	}
	if s.itemIndex > 0 {
		return s.setItemLocked(s.itemIndex - 1)
	}
	return s.advanceStoryLocked(-1)
}

func (s *session) advanceStoryLocked(dir int) []func() {
	next := s.storyIndex + dir
	if next >= 0 && next < len(s.siblings) {
		return s.activateStoryLocked(next, true)
	}

	if dir > 0 {
		// Ran off the far end of the sibling list. Park playback at 100% so
		// a late tick cannot refire; close-or-wrap is the host's decision.
		s.stopTriggerLocked()
		s.ended = true
	}
	if cb := s.cb.OnReachedEnd; cb != nil {
		return []func(){func() { cb(dir) }}
	}
	return nil
}

func (s *session) activateStoryLocked(idx int, fireChanged bool) []func() {
	s.storyIndex = idx
	story := s.currentStoryLocked()

	// Marking happens synchronously with activation so the next tray render
	// already sees the story as viewed. The set is idempotent.
	if err := s.viewedRepo.Add(s.ctx, s.viewerID, story.ID); err != nil {
		s.log.Error("Failed to mark story viewed", "story_id", story.ID, "error", err)
	}

	notify := s.setItemLocked(0)
	if fireChanged {
		if cb := s.cb.OnStoryChanged; cb != nil {
			notify = append(notify, func() { cb(story, idx) })
		}
	}
	return notify
}

// setItemLocked is the one place an item becomes active. The previous item's
// trigger is fully stopped before the new one starts; that ordering is what
// keeps two advance decisions from ever racing.
func (s *session) setItemLocked(idx int) []func() {
	s.stopTriggerLocked()
	s.itemIndex = idx
	s.elapsed = 0
	s.videoPos = 0
	s.videoDur = 0
	s.ended = false
	s.startTriggerLocked()

	var notify []func()
	if s.prefetch != nil {
		story := s.currentStoryLocked()
		notify = append(notify, func() { s.prefetch.HintNext(story, idx) })
	}
	return notify
}

func (s *session) startTriggerLocked() {
	s.gen++
	gen := s.gen

	item, ok := s.currentItemLocked()
	if !ok {
		return
	}

	switch item.MediaType {
	case domain.MediaTypeVideo:
		s.trigger = newVideoTrigger(s.log,
			func(pos, dur time.Duration) { s.onVideoProgress(gen, pos, dur) },
			func() { s.onVideoEnded(gen) },
		)
	default:
		s.trigger = newImageTrigger(s.clock, s.cfg.tickInterval, s.log,
			func() { s.onImageTick(gen) },
		)
	}
	s.trigger.Start()
}

func (s *session) stopTriggerLocked() {
	if s.trigger != nil {
		s.trigger.Stop()
		s.trigger = nil
	}
}

// onImageTick accrues playback time for the active image item. A tick from a
// superseded generation is stale and dropped; paused sessions accrue nothing,
// so resuming continues from the frozen point.
func (s *session) onImageTick(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.paused || s.ended {
		s.mu.Unlock()
		return
	}
	item, ok := s.currentItemLocked()
	if !ok {
		s.mu.Unlock()
		return
	}

	s.lastActive = s.clock.Now()
	s.elapsed += s.cfg.tickInterval

	var notify []func()
	if s.elapsed >= item.Duration() {
		s.elapsed = item.Duration()
		notify = s.advanceItemLocked(+1)
	}
	s.mu.Unlock()
	runAll(notify)
}

func (s *session) onVideoProgress(gen uint64, pos, dur time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen || s.paused || s.ended {
		return
	}
	s.videoPos = pos
	s.videoDur = dur
}

func (s *session) onVideoEnded(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.ended {
		s.mu.Unlock()
		return
	}
	if s.videoDur > 0 {
		s.videoPos = s.videoDur
	}
	notify := s.advanceItemLocked(+1)
	s.mu.Unlock()
	runAll(notify)
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
