package selectorimpl

import (
	"time"

	"github.com/lumen-social/story-engine/internal/domain"
)

// Filter keeps a story iff its author is the viewer or a followed user and the
// story is still inside the freshness window. Input order is preserved.
func Filter(stories []domain.Story, viewerID string, following map[string]struct{}, now time.Time, ttl time.Duration) []domain.Story {
	out := make([]domain.Story, 0, len(stories))
	for _, s := range stories {
		if !s.Fresh(now, ttl) {
			continue
		}
		if s.Author.ID == viewerID {
			out = append(out, s)
			continue
		}
		if _, ok := following[s.Author.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Order is a stable partition: unviewed stories first, viewed stories second,
// relative order within each group unchanged. No secondary sort key.
func Order(stories []domain.Story, viewed map[string]struct{}) []domain.Story {
	out := make([]domain.Story, 0, len(stories))
	for _, s := range stories {
		if _, ok := viewed[s.ID]; !ok {
			out = append(out, s)
		}
	}
	for _, s := range stories {
		if _, ok := viewed[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
