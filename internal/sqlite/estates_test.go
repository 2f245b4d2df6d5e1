package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/repository"
	"github.com/stretchr/testify/require"
)

func insertEstate(t *testing.T, repo *EstateRepository, id, name, ownerID string) *estate.Estate {
	t.Helper()
	est := &estate.Estate{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.UnixMicro(1764003000000000).UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), est))
	return est
}

func TestEstateRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEstateRepository(db)

	est := &estate.Estate{
		ID:        testEstateA,
		Name:      "Elm Street 4",
		Address:   "4 Elm Street",
		OwnerID:   "user1",
		CreatedAt: time.UnixMicro(1764003000000000).UTC(),
	}
	require.NoError(t, repo.Create(ctx, est))

	got, err := repo.Get(ctx, testEstateA)
	require.NoError(t, err)
	require.Equal(t, est.Name, got.Name)
	require.Equal(t, est.Address, got.Address)
	require.Equal(t, est.OwnerID, got.OwnerID)
	require.True(t, got.CreatedAt.Equal(est.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEstateRepository_DuplicateCreate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEstateRepository(db)

	insertEstate(t, repo, testEstateA, "Elm Street 4", "user1")

	err := repo.Create(ctx, &estate.Estate{ID: testEstateA, Name: "Again", OwnerID: "user1"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestEstateRepository_Members(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEstateRepository(db)

	insertEstate(t, repo, testEstateA, "Elm Street 4", "user1")

	member := &estate.Member{
		EstateID: testEstateA,
		UserID:   "user2",
		Role:     estate.RoleCollaborator,
		AddedAt:  time.UnixMicro(1764003000000000).UTC(),
	}
	require.NoError(t, repo.AddMember(ctx, member))

	// The same user cannot be added twice.
	err := repo.AddMember(ctx, member)
	require.ErrorIs(t, err, repository.ErrConflict)

	// Memberships require an existing estate.
	err = repo.AddMember(ctx, &estate.Member{
		EstateID: testEstateB,
		UserID:   "user2",
		Role:     estate.RoleCollaborator,
		AddedAt:  time.UnixMicro(1764003000000000).UTC(),
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestEstateRepository_EstatesForUser(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEstateRepository(db)

	insertEstate(t, repo, testEstateA, "Owned", "user1")
	insertEstate(t, repo, testEstateB, "Shared", "user2")
	insertEstate(t, repo, testEstateC, "Unrelated", "user3")

	require.NoError(t, repo.AddMember(ctx, &estate.Member{
		EstateID: testEstateB,
		UserID:   "user1",
		Role:     estate.RoleCollaborator,
		AddedAt:  time.UnixMicro(1764003000000000).UTC(),
	}))

	// Owned and shared estates union without duplicates.
	require.NoError(t, repo.AddMember(ctx, &estate.Member{
		EstateID: testEstateA,
		UserID:   "user1",
		Role:     estate.RoleOwner,
		AddedAt:  time.UnixMicro(1764003000000000).UTC(),
	}))

	ids, err := repo.EstatesForUser(ctx, "user1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{testEstateA, testEstateB}, ids)

	ids, err = repo.EstatesForUser(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestEstateRepository_ListForUser(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEstateRepository(db)

	insertEstate(t, repo, testEstateA, "Beta House", "user1")
	insertEstate(t, repo, testEstateB, "Alpha House", "user2")

	require.NoError(t, repo.AddMember(ctx, &estate.Member{
		EstateID: testEstateB,
		UserID:   "user1",
		Role:     estate.RoleCollaborator,
		AddedAt:  time.UnixMicro(1764003000000000).UTC(),
	}))

	summaries, err := repo.ListForUser(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "Alpha House", summaries[0].Name)
	require.Equal(t, estate.RoleCollaborator, summaries[0].Role)
	require.Equal(t, "Beta House", summaries[1].Name)
	require.Equal(t, estate.RoleOwner, summaries[1].Role)
}
