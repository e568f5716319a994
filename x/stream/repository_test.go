package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/priorstream/chat/internal/testutil"
)

var ctx = context.Background()

func TestRepository(t *testing.T) {

	db, cleanup := testutil.CreateDB()
	defer cleanup()

	repo := NewRepository(db)

	// first use creates the lane
	created, err := repo.GetOrCreate(ctx, 1, 10)
	if assert.NoError(t, err) {
		assert.NotZero(t, created.ID)
		assert.Equal(t, uint(1), created.ChannelID)
		assert.Equal(t, uint(10), created.OwnerUserID)
	}

	// the same pair resolves to the same lane, never a duplicate
	again, err := repo.GetOrCreate(ctx, 1, 10)
	if assert.NoError(t, err) {
		assert.Equal(t, created.ID, again.ID)
	}

	// a different owner in the same channel gets its own lane
	other, err := repo.GetOrCreate(ctx, 1, 11)
	if assert.NoError(t, err) {
		assert.NotEqual(t, created.ID, other.ID)
	}

	streams, err := repo.ListByChannel(ctx, 1)
	if assert.NoError(t, err) {
		assert.Len(t, streams, 2)
	}

	streams, err = repo.ListByChannel(ctx, 2)
	if assert.NoError(t, err) {
		assert.Len(t, streams, 0)
	}
}

func TestRepositoryGetOrCreateConcurrent(t *testing.T) {

	db, cleanup := testutil.CreateDB()
	defer cleanup()

	repo := NewRepository(db)

	// racing first-use callers all land on one row; the unique
	// constraint carries the idempotency, not app-level locking
	results := make(chan uint, 8)
	for i := 0; i < 8; i++ {
		go func() {
			stream, err := repo.GetOrCreate(ctx, 5, 42)
			assert.NoError(t, err)
			results <- stream.ID
		}()
	}

	first := <-results
	for i := 1; i < 8; i++ {
		assert.Equal(t, first, <-results)
	}

	streams, err := repo.ListByChannel(ctx, 5)
	if assert.NoError(t, err) {
		assert.Len(t, streams, 1)
	}
}
