package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amora-app/amora/internal/db"
	"github.com/amora-app/amora/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateOrUpdateDecision(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// insert like
	err := repo.CreateOrUpdateDecision(ctx, 1, 2, true)
	assert.NoError(t, err)

	// overwrite with pass
	err = repo.CreateOrUpdateDecision(ctx, 1, 2, false)
	assert.NoError(t, err)

	var d db.Decision
	_ = dbase.First(&d).Error
	assert.Equal(t, false, d.Liked)

	// still a single row
	var count int64
	dbase.Model(&db.Decision{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetLikersExcludesPassed(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// actors 1,2 liked recipient 99
	_ = repo.CreateOrUpdateDecision(ctx, 1, 99, true)
	_ = repo.CreateOrUpdateDecision(ctx, 2, 99, true)
	// recipient passed actor 2 → excluded from liked-by
	_ = repo.CreateOrUpdateDecision(ctx, 99, 2, false)

	decisions, _, err := repo.GetLikers(ctx, 99, nil, 10)
	assert.NoError(t, err)
	assert.Len(t, decisions, 1)
	assert.Equal(t, uint64(1), decisions[0].ActorID)
}

func TestGetLikersPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	for actor := uint64(1); actor <= 5; actor++ {
		_ = repo.CreateOrUpdateDecision(ctx, actor, 99, true)
	}

	firstPage, token, err := repo.GetLikers(ctx, 99, nil, 3)
	assert.NoError(t, err)
	assert.Len(t, firstPage, 3)
	assert.NotNil(t, token)

	secondPage, token2, err := repo.GetLikers(ctx, 99, token, 3)
	assert.NoError(t, err)
	assert.Len(t, secondPage, 2)
	assert.Nil(t, token2)

	// no overlap between pages
	seen := map[uint64]bool{}
	for _, d := range append(firstPage, secondPage...) {
		assert.False(t, seen[d.ActorID])
		seen[d.ActorID] = true
	}
}

func TestCountLikers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_ = repo.CreateOrUpdateDecision(ctx, 1, 99, true)
	_ = repo.CreateOrUpdateDecision(ctx, 2, 99, true)
	_ = repo.CreateOrUpdateDecision(ctx, 3, 99, false)
	_ = repo.CreateOrUpdateDecision(ctx, 99, 2, false)

	count, err := repo.CountLikers(ctx, 99)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDecidedIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_ = repo.CreateOrUpdateDecision(ctx, 1, 2, true)
	_ = repo.CreateOrUpdateDecision(ctx, 1, 3, false)

	ids, err := repo.DecidedIDs(ctx, 1)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 3}, ids)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_ = repo.CreateOrUpdateDecision(ctx, 1, 2, true)

	liked, err := repo.HasLiked(ctx, 1, 2)
	assert.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.HasLiked(ctx, 2, 1)
	assert.NoError(t, err)
	assert.False(t, liked)
}
