package player

import (
	"context"
	"time"

	"github.com/lumen-social/story-engine/internal/domain"
)

// VideoEventKind mirrors the media element's asynchronous event stream. The
// hosting shell forwards these into the session; the session never touches
// media playback itself.
type VideoEventKind string

const (
	VideoTimeUpdate VideoEventKind = "timeupdate"
	VideoEnded      VideoEventKind = "ended"
	VideoPlayFailed VideoEventKind = "playfailed"
)

type VideoEvent struct {
	Kind VideoEventKind
	// Position and Duration accompany timeupdate events.
	Position time.Duration
	Duration time.Duration
}

// Callbacks is how control flows back to the hosting shell. All callbacks are
// invoked outside the session's internal lock and may call back into the
// session. Any callback may be nil.
type Callbacks struct {
	// OnStoryChanged fires when playback chains to a sibling story.
	OnStoryChanged func(story domain.Story, index int)
	// OnReachedEnd fires when navigation runs off either end of the sibling
	// list (direction +1 or -1). Whether to close or wrap is the host's call.
	OnReachedEnd func(direction int)
	// OnClose fires once when the session tears down.
	OnClose func()
	// OnOpenUserProfile is a pure pass-through navigation request.
	OnOpenUserProfile func(user domain.User)
}

// State is a point-in-time snapshot of a playback session.
type State struct {
	SessionID       string
	ViewerID        string
	StoryID         string
	StoryIndex      int
	ItemIndex       int
	ProgressPercent float64
	Paused          bool
	Closed          bool
}

// Session plays one story's items in order, auto-advancing, and chains across
// the sibling list at the ends.
type Session interface {
	ID() string

	// Press pauses playback immediately. Coordinates are view pixels.
	Press(x, y float64)
	// Move updates the active press; enough travel turns it into a drag.
	Move(x, y float64)
	// Release resumes playback. A brief undragged press also navigates by tap
	// zone: left 30% of the view goes back, the rest goes forward.
	Release(x, y float64)

	// Next and Prev are the explicit item navigation operations, bounded by
	// the item list; overflow delegates to sibling navigation.
	Next()
	Prev()

	// SetStory resets playback when the presented story's identity changes.
	SetStory(story domain.Story)

	// HandleVideoEvent feeds the current video item's event stream.
	HandleVideoEvent(ev VideoEvent)

	// OpenAuthorProfile requests navigation to the current author's profile.
	OpenAuthorProfile()

	Snapshot() State

	// Close tears down timers and listeners; no further state mutation.
	Close()
}

// Manager owns the live session table.
type Manager interface {
	// Open starts playback of story at item 0 and marks it viewed. The
	// sibling list is the ordered eligible set containing the story.
	Open(ctx context.Context, viewerID string, story domain.Story, siblings []domain.Story, cb Callbacks) (Session, error)
	// OpenByID recomputes the viewer's eligible set and opens the story from
	// it. This is the story-circle activation path.
	OpenByID(ctx context.Context, viewerID, storyID string, cb Callbacks) (Session, error)

	Get(sessionID string) (Session, bool)
	CloseIdle(olderThan time.Duration) int
	CloseAll()
}
