package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/estateline/activitylog/internal/domain/activity"
)

// EventRepository implements activity.EventRepository for SQLite
type EventRepository struct {
	db *DB
}

var _ activity.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends a new event and fills in its assigned id. Timestamps are
// stored at microsecond precision.
func (r *EventRepository) Insert(ctx context.Context, event *activity.Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO events (
			estate_id, category, action, message,
			subject_id, subject_type, detail, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var detail any
	if len(event.Detail) > 0 {
		detail = string(event.Detail)
	}

	result, err := r.db.ExecContext(ctx, query,
		event.EstateID,
		event.Category,
		event.Action,
		event.Message,
		event.SubjectID,
		event.SubjectType,
		detail,
		createdAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		event.ID = id
	}
	event.CreatedAt = createdAt

	return nil
}

// PageByEstates returns one keyset page of events for the given estates,
// newest first. A zero cursor starts at the head of the feed; otherwise rows
// strictly after the cursor position in (created_at, id) order are skipped.
func (r *EventRepository) PageByEstates(ctx context.Context, estateIDs []string, before activity.Cursor, limit int) ([]activity.Event, error) {
	if len(estateIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(estateIDs)), ",")
	query := fmt.Sprintf(`
		SELECT id, estate_id, category, action, message,
			subject_id, subject_type, detail, created_at
		FROM events
		WHERE estate_id IN (%s)
	`, placeholders)

	args := make([]any, 0, len(estateIDs)+4)
	for _, id := range estateIDs {
		args = append(args, id)
	}

	if !before.IsZero() {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		ts := before.CreatedAt.UnixMicro()
		args = append(args, ts, ts, before.ID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to page events: %w", err)
	}
	defer rows.Close()

	var events []activity.Event
	for rows.Next() {
		var (
			event       activity.Event
			subjectID   sql.NullString
			subjectType sql.NullString
			detail      sql.NullString
			createdAt   int64
		)
		if err := rows.Scan(
			&event.ID,
			&event.EstateID,
			&event.Category,
			&event.Action,
			&event.Message,
			&subjectID,
			&subjectType,
			&detail,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if subjectID.Valid {
			event.SubjectID = &subjectID.String
		}
		if subjectType.Valid {
			event.SubjectType = &subjectType.String
		}
		if detail.Valid && detail.String != "" {
			event.Detail = json.RawMessage(detail.String)
		}
		event.CreatedAt = time.UnixMicro(createdAt).UTC()
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
