package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/estateline/activitylog/internal/repository"
)

// APIKeyRepository implements repository.APIKeyRepository for SQLite
type APIKeyRepository struct {
	db *DB
}

var _ repository.APIKeyRepository = (*APIKeyRepository)(nil)

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a new API key
func (r *APIKeyRepository) Create(ctx context.Context, key *repository.APIKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO api_keys (id, user_id, name, key_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.UserID,
		key.Name,
		key.KeyHash,
		key.CreatedAt.UTC().UnixMicro(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// GetByHash retrieves an API key by its token hash
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, created_at
		FROM api_keys
		WHERE key_hash = ?
	`

	var (
		key       repository.APIKey
		name      sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(
		&key.ID,
		&key.UserID,
		&name,
		&key.KeyHash,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	key.Name = name.String
	key.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &key, nil
}

// List returns every API key belonging to a user, newest first
func (r *APIKeyRepository) List(ctx context.Context, userID string) ([]repository.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, created_at
		FROM api_keys
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	var keys []repository.APIKey
	for rows.Next() {
		var (
			key       repository.APIKey
			name      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&key.ID, &key.UserID, &name, &key.KeyHash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		key.Name = name.String
		key.CreatedAt = time.UnixMicro(createdAt).UTC()
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api key rows: %w", err)
	}

	return keys, nil
}
