package application

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xong-backend/internal/config"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
)

func TestOpenPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLite driver stores records and results", func(t *testing.T) {
		conf := &config.Config{
			Persistence:       config.Persistence{Driver: config.DriverSQLite},
			SQLiteStoragePath: filepath.Join(t.TempDir(), "xong.db"),
		}

		games, err := openPersistence(ctx, conf)
		require.NoError(t, err)
		t.Cleanup(func() { _ = games.close() })

		id, err := games.store.Create(ctx, [2]string{"userA", "userB"})
		require.NoError(t, err)
		require.NotNil(t, games.recorder)
		assert.NoError(t, games.recorder.SaveResult(ctx, id, "userA"))
	})

	t.Run("HTTP driver keeps no results", func(t *testing.T) {
		conf := &config.Config{Persistence: config.Persistence{Driver: config.DriverHTTP, BaseURL: "http://localhost:3000"}}

		games, err := openPersistence(ctx, conf)
		require.NoError(t, err)

		assert.NotNil(t, games.store)
		assert.Nil(t, games.recorder)
		assert.NoError(t, games.close())
	})

	t.Run("Unknown driver is rejected", func(t *testing.T) {
		conf := &config.Config{Persistence: config.Persistence{Driver: "mongo"}}

		_, err := openPersistence(ctx, conf)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})
}

func TestFieldFromConfig(t *testing.T) {
	conf := config.Field{
		Width: 800, Height: 600, Margin: 20,
		PaddleWidth: 12, PaddleHeight: 90, PaddleSpeed: 6,
		BallSize: 16, BallSpeed: 5, BallSpeedMod: 0.25,
		CellSize: 100, HitBand: 44,
	}

	assert.Equal(t, physics.DefaultField(), fieldFromConfig(conf))
}
