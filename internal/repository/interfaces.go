package repository

import (
	"context"
	"time"
)

// APIKey is a stored credential granting a user access to the API
type APIKey struct {
	ID        string
	UserID    string
	Name      string
	KeyHash   string
	CreatedAt time.Time
}

// APIKeyRepository manages API key persistence
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context, userID string) ([]APIKey, error)
}
