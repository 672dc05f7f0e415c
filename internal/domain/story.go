package domain

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// StoryItem is one media unit inside a story. DurationSeconds only applies to
// images; videos advance on their own end-of-media event.
type StoryItem struct {
	ID              string
	URL             string
	MediaType       MediaType
	DurationSeconds int
}

func (i StoryItem) Duration() time.Duration {
	return time.Duration(i.DurationSeconds) * time.Second
}

// Story is one author's time-boxed collection of media items. Items keep
// display order and are immutable while a viewer session holds the story.
type Story struct {
	ID        string
	Author    User
	Items     []StoryItem
	CreatedAt time.Time
}

// Fresh reports whether the story is still inside the eligibility window.
func (s Story) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) < ttl
}
