package repository

import (
	"testing"

	"github.com/rocketscienceinc/xong-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: two paired users
	players := [2]string{"userA", "userB"}

	// When: Create is called twice
	firstID, err := gameRepo.Create(ctx, players)
	require.NoError(t, err)
	secondID, err := gameRepo.Create(ctx, players)
	require.NoError(t, err)

	// Then: each record gets its own id and is stored
	assert.NotEqual(t, firstID, secondID)

	record, err := gameRepo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, players, record.Players)
	assert.Empty(t, record.Winner)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		nonExistentGameID := "9999999"

		// When: GetByID is called with non-existent ID
		record, err := gameRepo.GetByID(ctx, nonExistentGameID)

		// Then: an ErrGameNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrGameNotFound, err)
		assert.Empty(t, record.ID)
	})
}

func TestGameRepository_SaveResult(t *testing.T) {
	t.Run("SaveResult_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game
		id, err := gameRepo.Create(ctx, [2]string{"userA", "userB"})
		require.NoError(t, err)

		// When: the winner is saved
		err = gameRepo.SaveResult(ctx, id, "userB")

		// Then: the record carries the winner
		require.NoError(t, err)
		record, err := gameRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "userB", record.Winner)
	})

	t.Run("SaveResult_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		err := gameRepo.SaveResult(ctx, "9999999", "draw")

		require.ErrorIs(t, err, ErrGameNotFound)
	})
}
