package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/estateline/activitylog/internal/repository"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type userKey struct{}

// IdentityResolver resolves a user ID from a bearer token.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// UserFromContext returns the authenticated user ID from context, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok
}

// WithUser returns a context carrying the authenticated user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// HashToken returns the stored form of an API token. Only the hash ever
// touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// APIKeyResolver authenticates bearer tokens against stored API key hashes.
type APIKeyResolver struct {
	keys repository.APIKeyRepository
}

// NewAPIKeyResolver creates a resolver backed by the given key repository.
func NewAPIKeyResolver(keys repository.APIKeyRepository) *APIKeyResolver {
	return &APIKeyResolver{keys: keys}
}

// ResolveUser implements IdentityResolver.
func (r *APIKeyResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	key, err := r.keys.GetByHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if key.UserID == "" {
		return "", ErrUnauthorized
	}
	return key.UserID, nil
}
