package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	estateA = "11111111-1111-1111-1111-111111111111"
	estateB = "22222222-2222-2222-2222-222222222222"
)

func newTestService(events *mocks.EventRepository, memberships *mocks.EstateRepository) *activity.Service {
	return activity.NewService(events, memberships, activity.Limits{}, nil)
}

func TestActivityService_AppendAssignsID(t *testing.T) {
	ctx := context.Background()

	events := &mocks.EventRepository{}
	events.On("Insert", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*activity.Event).ID = 7
	}).Return(nil)

	svc := newTestService(events, &mocks.EstateRepository{})
	id, err := svc.Append(ctx, activity.AppendRequest{
		EstateID: estateA,
		Category: "task",
		Action:   "task_completed",
		Message:  "Fixed the boiler",
		Detail:   map[string]any{"cost": 120},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	inserted := events.Calls[0].Arguments.Get(1).(*activity.Event)
	require.Equal(t, estateA, inserted.EstateID)
	require.False(t, inserted.CreatedAt.IsZero())
	require.JSONEq(t, `{"cost":120}`, string(inserted.Detail))
}

func TestActivityService_AppendRejectsBadEstateID(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mocks.EventRepository{}, &mocks.EstateRepository{})
	_, err := svc.Append(ctx, activity.AppendRequest{EstateID: "not-a-uuid"})
	require.ErrorIs(t, err, activity.ErrInvalidEstateID)
}

func TestActivityService_RecordNeverFails(t *testing.T) {
	ctx := context.Background()

	events := &mocks.EventRepository{}
	events.On("Insert", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := newTestService(events, &mocks.EstateRepository{})

	id := svc.Record(ctx, activity.AppendRequest{EstateID: estateA, Action: "task_created"})
	require.Zero(t, id)
	require.Equal(t, int64(1), svc.Dropped())

	id = svc.Record(ctx, activity.AppendRequest{EstateID: "garbage"})
	require.Zero(t, id)
	require.Equal(t, int64(2), svc.Dropped())
}

func TestActivityService_ListEventsPaginates(t *testing.T) {
	ctx := context.Background()
	base := time.UnixMicro(1764003000000000).UTC()

	rows := []activity.Event{
		{ID: 30, EstateID: estateA, Action: "task_created", CreatedAt: base},
		{ID: 20, EstateID: estateB, Action: "invoice_paid", CreatedAt: base.Add(-time.Minute)},
		{ID: 10, EstateID: estateA, Action: "note_added", CreatedAt: base.Add(-2 * time.Minute)},
	}

	events := &mocks.EventRepository{}
	events.On("PageByEstates", ctx, []string{estateA, estateB}, activity.Cursor{}, 3).Return(rows, nil)

	memberships := &mocks.EstateRepository{}
	memberships.On("EstatesForUser", ctx, "user1").Return([]string{estateA, estateB}, nil)

	svc := newTestService(events, memberships)
	page, err := svc.ListEvents(ctx, "user1", activity.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(30), page.Items[0].ID)
	require.Equal(t, int64(20), page.Items[1].ID)

	// The cursor marks the last returned row, not the first dropped one.
	decoded := activity.DecodeCursor(page.NextCursor)
	require.Equal(t, int64(20), decoded.ID)
	require.True(t, decoded.CreatedAt.Equal(rows[1].CreatedAt))
}

func TestActivityService_ListEventsFinalPage(t *testing.T) {
	ctx := context.Background()

	rows := []activity.Event{
		{ID: 5, EstateID: estateA, Action: "task_created", CreatedAt: time.UnixMicro(1764003000000000).UTC()},
	}

	events := &mocks.EventRepository{}
	events.On("PageByEstates", ctx, []string{estateA}, activity.Cursor{}, 51).Return(rows, nil)

	memberships := &mocks.EstateRepository{}
	memberships.On("EstatesForUser", ctx, "user1").Return([]string{estateA}, nil)

	svc := newTestService(events, memberships)
	page, err := svc.ListEvents(ctx, "user1", activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Empty(t, page.NextCursor)
}

func TestActivityService_ListEventsEmptyScope(t *testing.T) {
	ctx := context.Background()

	memberships := &mocks.EstateRepository{}
	memberships.On("EstatesForUser", ctx, "loner").Return([]string{}, nil)

	svc := newTestService(&mocks.EventRepository{}, memberships)
	page, err := svc.ListEvents(ctx, "loner", activity.ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
	require.Empty(t, page.NextCursor)
}

func TestActivityService_ListEventsExplicitEstate(t *testing.T) {
	ctx := context.Background()

	events := &mocks.EventRepository{}
	events.On("PageByEstates", ctx, []string{estateB}, activity.Cursor{}, 51).Return([]activity.Event{}, nil)

	// Explicit scope never consults memberships.
	svc := newTestService(events, &mocks.EstateRepository{})
	_, err := svc.ListEvents(ctx, "user1", activity.ListOptions{EstateID: estateB})
	require.NoError(t, err)

	_, err = svc.ListEvents(ctx, "user1", activity.ListOptions{EstateID: "not-a-uuid"})
	require.ErrorIs(t, err, activity.ErrInvalidEstateID)
}

func TestActivityService_ListEventsBadCursorRestarts(t *testing.T) {
	ctx := context.Background()

	events := &mocks.EventRepository{}
	events.On("PageByEstates", ctx, []string{estateA}, activity.Cursor{}, 51).Return([]activity.Event{}, nil)

	svc := newTestService(events, &mocks.EstateRepository{})
	_, err := svc.ListEvents(ctx, "user1", activity.ListOptions{EstateID: estateA, Cursor: "!!corrupted!!"})
	require.NoError(t, err)
}

func TestActivityService_ListEventsClampsLimit(t *testing.T) {
	ctx := context.Background()

	events := &mocks.EventRepository{}
	events.On("PageByEstates", ctx, []string{estateA}, activity.Cursor{}, activity.MaxPageSize+1).Return([]activity.Event{}, nil)

	svc := newTestService(events, &mocks.EstateRepository{})
	_, err := svc.ListEvents(ctx, "user1", activity.ListOptions{EstateID: estateA, Limit: 10000})
	require.NoError(t, err)
}

func TestActivityService_ListEventsScopeFailure(t *testing.T) {
	ctx := context.Background()

	memberships := &mocks.EstateRepository{}
	memberships.On("EstatesForUser", ctx, "user1").Return(nil, errors.New("db gone"))

	svc := newTestService(&mocks.EventRepository{}, memberships)
	_, err := svc.ListEvents(ctx, "user1", activity.ListOptions{})
	require.ErrorIs(t, err, activity.ErrScopeResolution)
}

func TestActivityService_ListEventsInvalidUser(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mocks.EventRepository{}, &mocks.EstateRepository{})
	_, err := svc.ListEvents(ctx, "  ", activity.ListOptions{})
	require.ErrorIs(t, err, activity.ErrInvalidUserID)
}
