package following

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=following.go -destination=mocks/mock.go

// Repository is the social-graph collaborator's view of who follows whom.
// Follow/Unfollow belong to that collaborator; the story subsystem only reads.
type Repository interface {
	Follow(ctx context.Context, viewerID, authorID string) error
	Unfollow(ctx context.Context, viewerID, authorID string) error
	Contains(ctx context.Context, viewerID, authorID string) (bool, error)
	ListFollowed(ctx context.Context, viewerID string) ([]string, error)
}
