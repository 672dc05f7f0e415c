package playerimpl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lumen-social/story-engine/internal/domain"
	"github.com/lumen-social/story-engine/internal/player"
	"github.com/lumen-social/story-engine/internal/repositories/viewed"
	"github.com/lumen-social/story-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTick = 100 * time.Millisecond

func testSessionConfig() sessionConfig {
	return sessionConfig{
		tickInterval:     testTick,
		holdThreshold:    250 * time.Millisecond,
		dragThresholdPx:  10,
		prevZoneFraction: 0.3,
		viewportWidth:    390,
	}
}

// recorder collects callback invocations for assertions.
type recorder struct {
	mu           sync.Mutex
	storyChanged []string
	reachedEnd   []int
	closed       int
	profiles     []string
}

func (r *recorder) callbacks() player.Callbacks {
	return player.Callbacks{
		OnStoryChanged: func(story domain.Story, _ int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.storyChanged = append(r.storyChanged, story.ID)
		},
		OnReachedEnd: func(direction int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.reachedEnd = append(r.reachedEnd, direction)
		},
		OnClose: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.closed++
		},
		OnOpenUserProfile: func(user domain.User) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.profiles = append(r.profiles, user.ID)
		},
	}
}

func (r *recorder) snapshotStoryChanged() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.storyChanged...)
}

func (r *recorder) snapshotReachedEnd() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.reachedEnd...)
}

func (r *recorder) closedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func imageStory(id, authorID string, secs ...int) domain.Story {
	items := make([]domain.StoryItem, 0, len(secs))
	for i, s := range secs {
		items = append(items, domain.StoryItem{
			ID:              id + "-" + string(rune('a'+i)),
			URL:             "https://cdn.example.com/" + id + "/" + string(rune('a'+i)),
			MediaType:       domain.MediaTypeImage,
			DurationSeconds: s,
		})
	}
	return domain.Story{ID: id, Author: domain.User{ID: authorID}, Items: items, CreatedAt: time.Now()}
}

func newTestSession(t *testing.T, clock clockwork.Clock, story domain.Story, siblings []domain.Story, cb player.Callbacks) (*session, *viewed.Memory) {
	t.Helper()
	repo := viewed.NewMemory()
	s := newSession(sessionOpts{
		id:         "sess-" + story.ID,
		viewerID:   "viewer-1",
		story:      story,
		siblings:   siblings,
		cb:         cb,
		cfg:        testSessionConfig(),
		clock:      clock,
		log:        logger.New(logger.Opts{}),
		viewedRepo: repo,
	})
	s.start()
	t.Cleanup(s.Close)
	return s, repo
}

// tickAndWait advances the fake clock one tick and waits until the session has
// observably consumed it, keeping tick delivery lossless in tests.
func tickAndWait(t *testing.T, clock *clockwork.FakeClock, s *session, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		before := s.Snapshot()
		clock.Advance(testTick)
		require.Eventually(t, func() bool {
			return s.Snapshot() != before
		}, 2*time.Second, time.Millisecond)
	}
}

func viewedIDs(t *testing.T, repo *viewed.Memory) []string {
	t.Helper()
	ids, err := repo.IDs(context.Background(), "viewer-1")
	require.NoError(t, err)
	return ids
}

func TestOpen_MarksStoryViewedOnceAtOpen(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2)
	_, repo := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	assert.Equal(t, []string{"s1"}, viewedIDs(t, repo))
}

func TestImageAutoAdvance(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2, 2)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	tickAndWait(t, clock, s, 8)
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.ItemIndex)
	assert.InDelta(t, 40, snap.ProgressPercent, 0.01)

	// 12 more ticks complete the 2s item and advance exactly once.
	tickAndWait(t, clock, s, 12)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.ItemIndex)
	assert.Equal(t, 0, snap.StoryIndex)
	assert.InDelta(t, 0, snap.ProgressPercent, 0.01, "progress resets for the new item")
}

func TestProgressNeverOvershoots(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 1, 5)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	tickAndWait(t, clock, s, 10)
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	tickAndWait(t, clock, s, 5)
	snap := s.Snapshot()
	assert.LessOrEqual(t, snap.ProgressPercent, 100.0)
	assert.GreaterOrEqual(t, snap.ProgressPercent, 0.0)
}

func TestPauseFreezesProgress(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	tickAndWait(t, clock, s, 8)
	require.InDelta(t, 40, s.Snapshot().ProgressPercent, 0.01)

	s.Press(200, 300)
	require.True(t, s.Snapshot().Paused)

	// Held for 5 seconds, longer than the item's remaining duration.
	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.ItemIndex, "paused item must not advance")
	assert.InDelta(t, 40, snap.ProgressPercent, 0.01, "paused progress must not accrue")

	s.Release(200, 300)
	snap = s.Snapshot()
	require.False(t, snap.Paused)
	assert.Equal(t, 0, snap.ItemIndex, "a sustained hold must not navigate on release")
	// One pause-era tick may still have been buffered at release.
	assert.InDelta(t, 40, snap.ProgressPercent, 5.01, "progress continues from the frozen point, no snap to 100")

	// Playback completes from ~40%, not from scratch and not skipped.
	for i := 0; i < 14 && s.Snapshot().StoryIndex == 0 && s.Snapshot().ProgressPercent < 100; i++ {
		tickAndWait(t, clock, s, 1)
	}
	assert.GreaterOrEqual(t, s.Snapshot().ProgressPercent, 100.0)
}

func TestNextAtLastItemChainsToNextStory(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := imageStory("a", "alice", 2, 2)
	b := imageStory("b", "bob", 2)
	rec := &recorder{}
	s, repo := newTestSession(t, clock, a, []domain.Story{a, b}, rec.callbacks())

	s.Next()
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	s.Next()
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.StoryIndex)
	assert.Equal(t, "b", snap.StoryID)
	assert.Equal(t, 0, snap.ItemIndex)
	assert.Equal(t, []string{"b"}, rec.snapshotStoryChanged())
	assert.ElementsMatch(t, []string{"a", "b"}, viewedIDs(t, repo), "chained story is marked viewed on activation")
}

func TestPrevAtFirstItemChainsToPreviousStory(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := imageStory("a", "alice", 2)
	b := imageStory("b", "bob", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, b, []domain.Story{a, b}, rec.callbacks())

	require.Equal(t, 1, s.Snapshot().StoryIndex)

	s.Prev()
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.StoryIndex)
	assert.Equal(t, "a", snap.StoryID)
	assert.Equal(t, 0, snap.ItemIndex)
	assert.Equal(t, []string{"a"}, rec.snapshotStoryChanged())
}

func TestReachedEndDelegatesToHost(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("only", "alice", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, rec.callbacks())

	s.Prev()
	assert.Equal(t, []int{-1}, rec.snapshotReachedEnd())
	assert.Equal(t, 0, s.Snapshot().ItemIndex, "no decrement below zero")

	s.Next()
	assert.Equal(t, []int{-1, 1}, rec.snapshotReachedEnd())
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.StoryIndex, "no increment out of bounds")
	assert.InDelta(t, 100, snap.ProgressPercent, 0.01, "playback parks at the end until the host decides")
}

func TestTapZones(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 5, 5)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, rec.callbacks())

	// 50% of a 390px view: forward zone.
	s.Press(195, 400)
	s.Release(195, 400)
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	// 10%: back zone.
	s.Press(39, 400)
	s.Release(39, 400)
	require.Equal(t, 0, s.Snapshot().ItemIndex)

	// 99%: forward zone.
	s.Press(386, 400)
	s.Release(386, 400)
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	assert.Empty(t, rec.snapshotReachedEnd())
}

func TestSustainedHoldDoesNotNavigate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 5, 5)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	s.Press(195, 400)
	clock.Advance(300 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Release(195, 400)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.ItemIndex)
	assert.False(t, snap.Paused)
}

func TestDragCancelsNavigation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 5, 5)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	s.Press(195, 400)
	s.Move(240, 400)
	s.Release(195, 400)

	assert.Equal(t, 0, s.Snapshot().ItemIndex, "a drag back to the origin still is not a tap")
}

func TestSmallJitterStillNavigates(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 5, 5)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	s.Press(195, 400)
	s.Move(199, 402)
	s.Release(199, 402)

	assert.Equal(t, 1, s.Snapshot().ItemIndex, "movement under the drag threshold is still a tap")
}

func videoStory(id, authorID string) domain.Story {
	return domain.Story{
		ID:     id,
		Author: domain.User{ID: authorID},
		Items: []domain.StoryItem{
			{ID: id + "-v", URL: "https://cdn.example.com/" + id + "/v.mp4", MediaType: domain.MediaTypeVideo},
		},
		CreatedAt: time.Now(),
	}
}

func TestVideoProgressMirrorsPlaybackPosition(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := videoStory("v1", "alice")
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	s.HandleVideoEvent(player.VideoEvent{
		Kind:     player.VideoTimeUpdate,
		Position: 2500 * time.Millisecond,
		Duration: 5 * time.Second,
	})
	assert.InDelta(t, 50, s.Snapshot().ProgressPercent, 0.01)
}

func TestVideoEndedAdvances(t *testing.T) {
	clock := clockwork.NewFakeClock()
	v := videoStory("v1", "alice")
	b := imageStory("b", "bob", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, v, []domain.Story{v, b}, rec.callbacks())

	s.HandleVideoEvent(player.VideoEvent{Kind: player.VideoEnded})

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.StoryIndex)
	assert.Equal(t, []string{"b"}, rec.snapshotStoryChanged())
}

func TestVideoPlayFailureIsSwallowed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := videoStory("v1", "alice")
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	s.HandleVideoEvent(player.VideoEvent{Kind: player.VideoPlayFailed})

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.ItemIndex)
	assert.InDelta(t, 0, snap.ProgressPercent, 0.01)

	// Manual navigation still works afterwards.
	s.Next()
	assert.InDelta(t, 100, s.Snapshot().ProgressPercent, 0.01, "navigating off the end parks playback")
}

func TestEmptyStoryDefersToSiblingNavigation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	empty := domain.Story{ID: "empty", Author: domain.User{ID: "alice"}, CreatedAt: time.Now()}
	b := imageStory("b", "bob", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, empty, []domain.Story{empty, b}, rec.callbacks())

	assert.InDelta(t, 0, s.Snapshot().ProgressPercent, 0.01)

	s.Next()
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.StoryIndex)
	assert.Equal(t, "b", snap.StoryID)
}

func TestEmptyStoryAloneNeverPanics(t *testing.T) {
	clock := clockwork.NewFakeClock()
	empty := domain.Story{ID: "empty", Author: domain.User{ID: "alice"}, CreatedAt: time.Now()}
	rec := &recorder{}
	s, _ := newTestSession(t, clock, empty, []domain.Story{empty}, rec.callbacks())

	s.Next()
	s.Prev()
	assert.Equal(t, []int{1, -1}, rec.snapshotReachedEnd())
}

func TestStaleTickIsIgnored(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2, 2)
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, player.Callbacks{})

	before := s.Snapshot()
	s.onImageTick(0) // generation long gone
	assert.Equal(t, before, s.Snapshot())

	// Item switch bumps the generation; a tick from the old item is stale.
	s.mu.Lock()
	oldGen := s.gen
	s.mu.Unlock()
	s.Next()
	s.onImageTick(oldGen)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.ItemIndex, "stale tick must not double-skip")
	assert.InDelta(t, 0, snap.ProgressPercent, 0.01, "stale tick must not accrue progress")
}

func TestSetStoryResetsOnIdentityChange(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := imageStory("a", "alice", 2, 2)
	b := imageStory("b", "bob", 2)
	s, repo := newTestSession(t, clock, a, []domain.Story{a, b}, player.Callbacks{})

	s.Next()
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	// Same identity: nothing resets.
	s.SetStory(a)
	assert.Equal(t, 1, s.Snapshot().ItemIndex)

	// New identity: item index and progress reset, story marked viewed.
	s.SetStory(b)
	snap := s.Snapshot()
	assert.Equal(t, "b", snap.StoryID)
	assert.Equal(t, 0, snap.ItemIndex)
	assert.InDelta(t, 0, snap.ProgressPercent, 0.01)
	assert.ElementsMatch(t, []string{"a", "b"}, viewedIDs(t, repo))
}

func TestOpenAuthorProfilePassesThrough(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, rec.callbacks())

	s.OpenAuthorProfile()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"alice"}, rec.profiles)
}

func TestCloseTearsDownAndStopsMutation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	story := imageStory("s1", "alice", 2)
	rec := &recorder{}
	s, _ := newTestSession(t, clock, story, []domain.Story{story}, rec.callbacks())

	s.Close()
	require.True(t, s.Snapshot().Closed)
	assert.Equal(t, 1, rec.closedCount())

	before := s.Snapshot()
	s.Next()
	s.Prev()
	s.Press(10, 10)
	s.Release(10, 10)
	assert.Equal(t, before, s.Snapshot(), "no state mutation after close")

	s.Close()
	assert.Equal(t, 1, rec.closedCount(), "close is idempotent")
}

func TestEndToEndScenario(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s1 := domain.Story{
		ID:     "S",
		Author: domain.User{ID: "alice"},
		Items: []domain.StoryItem{
			{ID: "S-img", URL: "https://cdn.example.com/S/img.jpg", MediaType: domain.MediaTypeImage, DurationSeconds: 3},
			{ID: "S-vid", URL: "https://cdn.example.com/S/vid.mp4", MediaType: domain.MediaTypeVideo},
		},
		CreatedAt: time.Now(),
	}
	rec := &recorder{}
	s, repo := newTestSession(t, clock, s1, []domain.Story{s1}, rec.callbacks())

	assert.Equal(t, []string{"S"}, viewedIDs(t, repo), "viewed is recorded at open time")

	// 3 seconds of image playback auto-advance to the video item.
	tickAndWait(t, clock, s, 30)
	require.Equal(t, 1, s.Snapshot().ItemIndex)

	s.HandleVideoEvent(player.VideoEvent{Kind: player.VideoTimeUpdate, Position: 4 * time.Second, Duration: 5 * time.Second})
	assert.InDelta(t, 80, s.Snapshot().ProgressPercent, 0.01)

	s.HandleVideoEvent(player.VideoEvent{Kind: player.VideoEnded})
	assert.Equal(t, []int{1}, rec.snapshotReachedEnd(), "no more items and no next sibling")

	assert.Equal(t, []string{"S"}, viewedIDs(t, repo), "still exactly one viewed entry")
}
