package viewed

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=viewed.go -destination=mocks/mock.go

// Repository records which stories a viewer has opened this session. A story
// is marked the moment its player opens, not when it finishes. Adding an id
// that is already present is a no-op. The player is the only writer; the
// selector only reads.
type Repository interface {
	Add(ctx context.Context, viewerID, storyID string) error
	Contains(ctx context.Context, viewerID, storyID string) (bool, error)
	IDs(ctx context.Context, viewerID string) ([]string, error)
}
