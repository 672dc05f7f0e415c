package story

import (
	"context"
	"errors"
	"time"

	"github.com/lumen-social/story-engine/internal/domain"
)

var ErrNotFound = errors.New("story not found")

//go:generate go run go.uber.org/mock/mockgen -source=story.go -destination=mocks/mock.go

// Repository is the candidate story set hydrated by the story creation flow.
// ListCandidates must preserve first-insertion order: the selector's
// viewed/unviewed partition is stable and inherits its relative order from
// here.
type Repository interface {
	Upsert(ctx context.Context, story domain.Story) error
	GetByID(ctx context.Context, id string) (*domain.Story, error)
	ListCandidates(ctx context.Context) ([]domain.Story, error)
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int, error)
}
