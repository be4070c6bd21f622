package entity

import (
	"testing"

	"github.com/rocketscienceinc/xong-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	// Given: two queued users
	// When: a game is created for them
	game := NewGame("g1", "userA", "userB")

	// Then: seat 1 has the turn and every cell is empty
	assert.Equal(t, Seats{One: "userA", Two: "userB"}, game.Players)
	assert.Equal(t, "userA", game.Turn)
	assert.Equal(t, PhaseXO, game.Phase)
	assert.Equal(t, PlayStateWaiting, game.PlayState)
	assert.Empty(t, game.Winner)
	require.Len(t, game.Grid, 9)
	for _, id := range CellIDs {
		assert.Equal(t, Cell{}, game.Grid[id], "cell %s", id)
	}
}

func TestGame_Clone(t *testing.T) {
	t.Run("Mutating the clone leaves the original untouched", func(t *testing.T) {
		// Given: a game with one selected cell
		game := NewGame("g1", "userA", "userB")
		game.Grid["11"] = Cell{Mark: MarkX, Status: CellSelected, Owner: "userA"}

		// When: the clone is mutated
		clone := game.Clone()
		clone.Grid["11"] = Cell{Mark: MarkX, Status: CellCaptured, Owner: "userA"}
		clone.Turn = "userB"

		// Then: the original still holds the old values
		assert.Equal(t, CellSelected, game.Grid["11"].Status)
		assert.Equal(t, "userA", game.Turn)
		assert.Equal(t, CellCaptured, clone.Grid["11"].Status)
	})
}

func TestGame_ConfirmPlaying(t *testing.T) {
	t.Run("Returns nil when playing", func(t *testing.T) {
		game := &Game{PlayState: PlayStatePlaying}

		assert.NoError(t, game.ConfirmPlaying())
	})

	t.Run("Returns ErrGameIsNotStarted when waiting", func(t *testing.T) {
		game := &Game{PlayState: PlayStateWaiting}

		assert.ErrorIs(t, game.ConfirmPlaying(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when finished", func(t *testing.T) {
		game := &Game{PlayState: PlayStateFinished}

		assert.ErrorIs(t, game.ConfirmPlaying(), apperror.ErrGameFinished)
	})

	t.Run("Returns an invalid action for unknown state", func(t *testing.T) {
		game := &Game{PlayState: "unknown"}

		err := game.ConfirmPlaying()

		require.Error(t, err)
		assert.True(t, apperror.IsInvalidAction(err))
		assert.Contains(t, err.Error(), "unknown play state")
	})
}

func TestSeats(t *testing.T) {
	seats := Seats{One: "userA", Two: "userB"}

	assert.Equal(t, 1, seats.SeatOf("userA"))
	assert.Equal(t, 2, seats.SeatOf("userB"))
	assert.Equal(t, 0, seats.SeatOf("spectator"))
	assert.Equal(t, 0, seats.SeatOf(""))

	assert.Equal(t, "userB", seats.Other("userA"))
	assert.Equal(t, "userA", seats.Other("userB"))
	assert.Empty(t, seats.Other("spectator"))

	assert.True(t, seats.Has("userA"))
	assert.False(t, seats.Has(""))
	assert.Equal(t, [2]string{"userA", "userB"}, seats.IDs())
}

func TestNewSnapshot(t *testing.T) {
	// Given: a game and one attached and one detached player
	game := NewGame("g1", "userA", "userB")
	attached := NewPlayer("userA", "g1", MarkX, Vector{X: 20, Y: 255})
	detached := NewPlayer("userB", "", MarkO, Vector{})

	// When: building the snapshot
	snapshot := NewSnapshot(game, attached, detached, nil)

	// Then: only the attached player is listed and the grid is a list
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, 255.0, snapshot.Players["userA"].Y)
	assert.Nil(t, snapshot.Players["userA"].Direction)
	assert.Len(t, snapshot.Game.XoState, 9)
	assert.Nil(t, snapshot.Game.Winner)
}
