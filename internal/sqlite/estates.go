package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/repository"
)

// EstateRepository implements estate.Repository for SQLite. It also serves
// the activity service as its MembershipRepository.
type EstateRepository struct {
	db *DB
}

var _ estate.Repository = (*EstateRepository)(nil)
var _ activity.MembershipRepository = (*EstateRepository)(nil)

// NewEstateRepository creates a new EstateRepository
func NewEstateRepository(db *DB) *EstateRepository {
	return &EstateRepository{db: db}
}

// Create creates a new estate
func (r *EstateRepository) Create(ctx context.Context, est *estate.Estate) error {
	query := `
		INSERT INTO estates (id, name, address, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		est.ID,
		est.Name,
		est.Address,
		est.OwnerID,
		est.CreatedAt.UTC().UnixMicro(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create estate: %w", err)
	}

	return nil
}

// Get retrieves an estate by ID
func (r *EstateRepository) Get(ctx context.Context, id string) (*estate.Estate, error) {
	query := `
		SELECT id, name, address, owner_id, created_at
		FROM estates
		WHERE id = ?
	`

	var (
		est       estate.Estate
		address   sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&est.ID,
		&est.Name,
		&address,
		&est.OwnerID,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get estate: %w", err)
	}

	est.Address = address.String
	est.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &est, nil
}

// ListForUser returns summaries of every estate the user owns or has been
// added to as a member
func (r *EstateRepository) ListForUser(ctx context.Context, userID string) ([]estate.Summary, error) {
	query := `
		SELECT e.id, e.name, e.address, 'owner' AS role
		FROM estates e
		WHERE e.owner_id = ?
		UNION
		SELECT e.id, e.name, e.address, m.role
		FROM estates e
		JOIN estate_members m ON m.estate_id = e.id
		WHERE m.user_id = ? AND e.owner_id <> ?
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estates: %w", err)
	}
	defer rows.Close()

	var summaries []estate.Summary
	for rows.Next() {
		var (
			summary estate.Summary
			address sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &address, &summary.Role); err != nil {
			return nil, fmt.Errorf("failed to scan estate summary: %w", err)
		}
		summary.Address = address.String
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estate rows: %w", err)
	}

	return summaries, nil
}

// AddMember grants a user access to an estate
func (r *EstateRepository) AddMember(ctx context.Context, member *estate.Member) error {
	query := `
		INSERT INTO estate_members (estate_id, user_id, role, added_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.EstateID,
		member.UserID,
		member.Role,
		member.AddedAt.UTC().UnixMicro(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add estate member: %w", err)
	}

	return nil
}

// EstatesForUser returns the ids of every estate visible to the user: the
// union of estates they own and estates shared with them
func (r *EstateRepository) EstatesForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT id FROM estates WHERE owner_id = ?
		UNION
		SELECT estate_id FROM estate_members WHERE user_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve estates for user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan estate id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estate id rows: %w", err)
	}

	return ids, nil
}
