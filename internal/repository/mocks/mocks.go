package mocks

import (
	"context"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/repository"
	"github.com/stretchr/testify/mock"
)

// EventRepository is a mock for activity.EventRepository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Insert(ctx context.Context, event *activity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) PageByEstates(ctx context.Context, estateIDs []string, before activity.Cursor, limit int) ([]activity.Event, error) {
	args := m.Called(ctx, estateIDs, before, limit)
	if list, ok := args.Get(0).([]activity.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// EstateRepository is a mock for estate.Repository and activity.MembershipRepository.
type EstateRepository struct {
	mock.Mock
}

func (m *EstateRepository) Create(ctx context.Context, est *estate.Estate) error {
	args := m.Called(ctx, est)
	return args.Error(0)
}

func (m *EstateRepository) Get(ctx context.Context, id string) (*estate.Estate, error) {
	args := m.Called(ctx, id)
	if est, ok := args.Get(0).(*estate.Estate); ok {
		return est, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EstateRepository) ListForUser(ctx context.Context, userID string) ([]estate.Summary, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]estate.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EstateRepository) AddMember(ctx context.Context, member *estate.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *EstateRepository) EstatesForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// APIKeyRepository is a mock for repository.APIKeyRepository.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Create(ctx context.Context, key *repository.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if key, ok := args.Get(0).(*repository.APIKey); ok {
		return key, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) List(ctx context.Context, userID string) ([]repository.APIKey, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]repository.APIKey); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Recorder is a mock for estate.Recorder.
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Record(ctx context.Context, req activity.AppendRequest) int64 {
	args := m.Called(ctx, req)
	return args.Get(0).(int64)
}

var _ activity.EventRepository = (*EventRepository)(nil)
var _ estate.Repository = (*EstateRepository)(nil)
var _ activity.MembershipRepository = (*EstateRepository)(nil)
var _ repository.APIKeyRepository = (*APIKeyRepository)(nil)
var _ estate.Recorder = (*Recorder)(nil)
