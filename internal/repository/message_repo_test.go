package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amora-app/amora/internal/db"
	"github.com/amora-app/amora/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestMessageCreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	msg, err := repo.Create(ctx, 1, 2, "hello")
	assert.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, "hello", msg.Content)
}

func TestHistoryBothDirectionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seed := []db.Message{
		{SenderID: 1, RecipientID: 2, Content: "first", CreatedAt: base.Add(-3 * time.Minute)},
		{SenderID: 2, RecipientID: 1, Content: "second", CreatedAt: base.Add(-2 * time.Minute)},
		{SenderID: 1, RecipientID: 2, Content: "third", CreatedAt: base.Add(-time.Minute)},
		// unrelated pair must not leak in
		{SenderID: 1, RecipientID: 3, Content: "other", CreatedAt: base},
	}
	for i := range seed {
		assert.NoError(t, dbase.Create(&seed[i]).Error)
	}

	messages, token, err := repo.History(ctx, 2, 1, nil, 10)
	assert.NoError(t, err)
	assert.Nil(t, token)
	assert.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "first", messages[2].Content)
}

func TestHistoryPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		msg := db.Message{
			SenderID:    1,
			RecipientID: 2,
			Content:     "msg",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		assert.NoError(t, dbase.Create(&msg).Error)
	}

	firstPage, token, err := repo.History(ctx, 1, 2, nil, 3)
	assert.NoError(t, err)
	assert.Len(t, firstPage, 3)
	assert.NotNil(t, token)

	secondPage, token2, err := repo.History(ctx, 1, 2, token, 3)
	assert.NoError(t, err)
	assert.Len(t, secondPage, 2)
	assert.Nil(t, token2)

	// strictly older than the first page
	assert.True(t, secondPage[0].CreatedAt.Before(firstPage[2].CreatedAt))
}
