package repository_test

import (
	"context"
	"testing"

	"github.com/amora-app/amora/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestRecordViewMonotonic(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewPreferenceRepository(dbase)

	// n calls increase the tally by exactly n
	for i := 0; i < 5; i++ {
		err := repo.RecordView(ctx, 1, []string{"sports"})
		assert.NoError(t, err)
	}

	count, err := repo.GetCount(ctx, 1, "sports")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestRecordViewMultipleCategories(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewPreferenceRepository(dbase)

	err := repo.RecordView(ctx, 1, []string{"sports", "music"})
	assert.NoError(t, err)
	err = repo.RecordView(ctx, 1, []string{"music"})
	assert.NoError(t, err)

	sports, _ := repo.GetCount(ctx, 1, "sports")
	music, _ := repo.GetCount(ctx, 1, "music")
	assert.Equal(t, int64(1), sports)
	assert.Equal(t, int64(2), music)
}

func TestRecordViewEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewPreferenceRepository(dbase)

	assert.NoError(t, repo.RecordView(ctx, 1, nil))
	assert.NoError(t, repo.RecordView(ctx, 1, []string{"", "  "}))

	categories, err := repo.TopCategories(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Empty(t, categories)
}

func TestTopCategoriesOrderAndTieBreak(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewPreferenceRepository(dbase)

	for i := 0; i < 3; i++ {
		_ = repo.RecordView(ctx, 1, []string{"travel"})
	}
	for i := 0; i < 2; i++ {
		_ = repo.RecordView(ctx, 1, []string{"zeta", "alpha"})
	}
	_ = repo.RecordView(ctx, 1, []string{"music"})

	categories, err := repo.TopCategories(ctx, 1, 3)
	assert.NoError(t, err)
	// highest count first; equal counts break ties by name ascending
	assert.Equal(t, []string{"travel", "alpha", "zeta"}, categories)
}

func TestTopCategoriesLimit(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewPreferenceRepository(dbase)

	_ = repo.RecordView(ctx, 1, []string{"a", "b", "c", "d", "e", "f", "g"})

	categories, err := repo.TopCategories(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Len(t, categories, 5)
}
