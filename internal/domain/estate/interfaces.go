package estate

import (
	"context"

	"github.com/estateline/activitylog/internal/domain/activity"
)

// Repository provides persistence for estates and memberships.
type Repository interface {
	Create(ctx context.Context, est *Estate) error
	Get(ctx context.Context, id string) (*Estate, error)
	ListForUser(ctx context.Context, userID string) ([]Summary, error)
	AddMember(ctx context.Context, member *Member) error
}

// Recorder appends activity events on a best-effort basis.
type Recorder interface {
	Record(ctx context.Context, req activity.AppendRequest) int64
}
