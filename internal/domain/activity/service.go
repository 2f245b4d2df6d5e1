package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Service implements ingestion and feed queries over the event log.
type Service struct {
	events      EventRepository
	memberships MembershipRepository
	limits      Limits
	logger      *slog.Logger

	dropped atomic.Int64
}

// NewService creates a new activity service.
func NewService(events EventRepository, memberships MembershipRepository, limits Limits, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		events:      events,
		memberships: memberships,
		limits:      limits.withDefaults(),
		logger:      logger,
	}
}

// Append validates and stores one event, returning its assigned id. The
// timestamp is assigned here; callers cannot backdate events.
func (s *Service) Append(ctx context.Context, req AppendRequest) (int64, error) {
	if _, err := uuid.Parse(req.EstateID); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEstateID, req.EstateID)
	}

	event := &Event{
		EstateID:  req.EstateID,
		Category:  strings.TrimSpace(req.Category),
		Action:    strings.TrimSpace(req.Action),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}
	if req.SubjectID != "" {
		id := req.SubjectID
		event.SubjectID = &id
	}
	if req.SubjectType != "" {
		t := req.SubjectType
		event.SubjectType = &t
	}
	if len(req.Detail) > 0 {
		raw, err := json.Marshal(req.Detail)
		if err != nil {
			return 0, fmt.Errorf("encoding event detail: %w", err)
		}
		event.Detail = raw
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return 0, fmt.Errorf("appending event: %w", err)
	}
	return event.ID, nil
}

// Record appends an event on a best-effort basis. Failures are logged and
// counted but never returned, so a broken log cannot fail the operation that
// produced the event.
func (s *Service) Record(ctx context.Context, req AppendRequest) int64 {
	id, err := s.Append(ctx, req)
	if err != nil {
		s.dropped.Add(1)
		s.logger.Warn("activity event dropped",
			"estate_id", req.EstateID,
			"category", req.Category,
			"action", req.Action,
			"error", err)
		return 0
	}
	return id
}

// Dropped reports how many best-effort events have been lost since startup.
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// ListEvents returns one page of the feed visible to userID, newest first.
func (s *Service) ListEvents(ctx context.Context, userID string, opts ListOptions) (*Page, error) {
	estateIDs, err := s.scopeFor(ctx, userID, opts.EstateID)
	if err != nil {
		return nil, err
	}
	if len(estateIDs) == 0 {
		return &Page{Items: []Presented{}}, nil
	}

	limit := s.clampLimit(opts.Limit)
	before := DecodeCursor(opts.Cursor)

	// Fetch one extra row to learn whether another page exists.
	events, err := s.events.PageByEstates(ctx, estateIDs, before, limit+1)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	next := ""
	if len(events) > limit {
		events = events[:limit]
		last := events[limit-1]
		next = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	items := make([]Presented, 0, len(events))
	for i := range events {
		items = append(items, Present(&events[i]))
	}
	return &Page{Items: items, NextCursor: next}, nil
}

// scopeFor resolves the estates visible to userID. An explicit estate id is
// syntax-checked and trusted; the global feed unions owned and shared estates.
func (s *Service) scopeFor(ctx context.Context, userID, estateID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if estateID != "" {
		if _, err := uuid.Parse(estateID); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEstateID, estateID)
		}
		return []string{estateID}, nil
	}
	ids, err := s.memberships.EstatesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScopeResolution, err)
	}
	return ids, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.DefaultPageSize
	}
	if limit > s.limits.MaxPageSize {
		return s.limits.MaxPageSize
	}
	return limit
}
