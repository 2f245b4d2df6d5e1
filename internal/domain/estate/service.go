package estate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/repository"
	"github.com/google/uuid"
)

// Service handles estate operations. Lifecycle changes are mirrored into the
// activity log on a best-effort basis.
type Service struct {
	repo     Repository
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a new estate service.
func NewService(repo Repository, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// CreateRequest defines estate creation inputs.
type CreateRequest struct {
	ID      string
	Name    string
	Address string
	OwnerID string
}

// Create creates a new estate owned by req.OwnerID.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Estate, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.OwnerID) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidInput, id)
	}

	est := &Estate{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		OwnerID:   req.OwnerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, est); err != nil {
		return nil, fmt.Errorf("creating estate: %w", err)
	}

	s.recorder.Record(ctx, activity.AppendRequest{
		EstateID:    est.ID,
		Category:    "estate",
		Action:      "estate_created",
		Message:     fmt.Sprintf("Estate %q created", est.Name),
		SubjectID:   est.ID,
		SubjectType: "estate",
	})

	return est, nil
}

// Get fetches an estate by ID.
func (s *Service) Get(ctx context.Context, id string) (*Estate, error) {
	est, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEstateNotFound
		}
		return nil, fmt.Errorf("getting estate: %w", err)
	}
	return est, nil
}

// List returns summaries of every estate the user owns or collaborates on.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ShareRequest defines membership inputs.
type ShareRequest struct {
	EstateID string
	UserID   string
	Role     Role
}

// Share grants a user access to an estate. The role defaults to collaborator.
func (s *Service) Share(ctx context.Context, req ShareRequest) (*Member, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrInvalidInput
	}
	role := req.Role
	if role == "" {
		role = RoleCollaborator
	}
	if role != RoleOwner && role != RoleCollaborator {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}

	est, err := s.Get(ctx, req.EstateID)
	if err != nil {
		return nil, err
	}

	member := &Member{
		EstateID: est.ID,
		UserID:   req.UserID,
		Role:     role,
		AddedAt:  time.Now().UTC(),
	}

	if err := s.repo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("adding estate member: %w", err)
	}

	s.recorder.Record(ctx, activity.AppendRequest{
		EstateID:    est.ID,
		Category:    "collaboration",
		Action:      "member_added",
		Message:     fmt.Sprintf("Estate %q shared", est.Name),
		SubjectID:   member.UserID,
		SubjectType: "member",
	})

	return member, nil
}
