package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/xong-backend/internal/apperror"
	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

// SelectCell marks an empty cell for the turn player and hands the round to the ball.
func SelectCell(game *entity.Game, userID, mark, cellID string) error {
	if err := game.ConfirmPlaying(); err != nil {
		return err
	}

	if game.Phase != entity.PhaseXO {
		return apperror.ErrWrongPhase
	}

	if game.Turn != userID {
		return apperror.ErrNotYourTurn
	}

	cell, ok := game.Grid[cellID]
	if !ok {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidCell, cellID)
	}

	if !cell.IsEmpty() {
		return apperror.ErrCellOccupied
	}

	game.Grid[cellID] = entity.Cell{
		Mark:   mark,
		Status: entity.CellSelected,
		Owner:  userID,
	}
	game.Phase = entity.PhasePong

	return nil
}

// CaptureCell turns the selected cell into a captured one, flips the turn and checks the result.
func CaptureCell(game *entity.Game, userID, cellID string) error {
	if err := game.ConfirmPlaying(); err != nil {
		return err
	}

	if game.Turn != userID {
		return apperror.ErrNotYourTurn
	}

	cell, ok := game.Grid[cellID]
	if !ok {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidCell, cellID)
	}

	if !cell.IsSelected() {
		return apperror.ErrCellNotSelected
	}

	cell.Status = entity.CellCaptured
	game.Grid[cellID] = cell

	game.Turn = game.Players.Other(game.Turn)
	game.Phase = entity.PhaseXO
	game.Round++

	updateGameStatus(game)

	return nil
}

// StartCountdown moves a match whose players are all connected into the starting state.
func StartCountdown(game *entity.Game, center entity.Vector) error {
	switch {
	case game.IsFinished():
		return apperror.ErrGameFinished
	case game.IsPlaying(), game.IsStarting():
		return apperror.ErrAlreadyStarted
	}

	game.PlayState = entity.PlayStateStarting
	game.Ball = entity.Ball{Position: center}

	return nil
}

// Launch ends the countdown and puts the ball in motion.
func Launch(game *entity.Game, ballSpeed float64) error {
	if game.IsFinished() || game.Winner != "" {
		return apperror.ErrGameFinished
	}

	if !game.IsStarting() {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidPlayState, game.PlayState)
	}

	launch(game, ballSpeed)

	return nil
}

func launch(game *entity.Game, ballSpeed float64) {
	game.PlayState = entity.PlayStatePlaying
	game.Ball.Speed = entity.Vector{X: ballSpeed, Y: 0}
	game.Round++
}

// Forfeit finishes the match in favour of the seat that did not leave.
func Forfeit(game *entity.Game, leaverID string) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	winner := game.Players.Other(leaverID)
	if winner == "" {
		return apperror.ErrNotAPlayer
	}

	game.Finish(winner)

	return nil
}

// SetPlayState applies a client requested lifecycle change.
func SetPlayState(game *entity.Game, userID, next string, ballSpeed float64) error {
	if !game.Players.Has(userID) {
		return apperror.ErrNotAPlayer
	}

	if !entity.IsValidPlayState(next) {
		return fmt.Errorf("%w: unknown play state %q", apperror.ErrInvalidPlayState, next)
	}

	switch {
	case game.PlayState == entity.PlayStatePlaying && next == entity.PlayStatePaused:
		game.PlayState = entity.PlayStatePaused
	case game.PlayState == entity.PlayStatePaused && next == entity.PlayStatePlaying:
		game.PlayState = entity.PlayStatePlaying
	case game.PlayState == entity.PlayStateStarting && next == entity.PlayStatePlaying:
		launch(game, ballSpeed)
	default:
		return fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidPlayState, game.PlayState, next)
	}

	return nil
}

// PickRandomCell chooses a free cell for the turn player when the pick deadline of round expires.
func PickRandomCell(game *entity.Game, round int, intn func(n int) int) (string, error) {
	if err := game.ConfirmPlaying(); err != nil {
		return "", err
	}

	if game.Round != round {
		return "", apperror.ErrStaleRound
	}

	if game.Phase != entity.PhaseXO {
		return "", apperror.ErrWrongPhase
	}

	free := game.Grid.EmptyCells()
	if len(free) == 0 {
		return "", apperror.ErrCellOccupied
	}

	return free[intn(len(free))], nil
}

// DetermineResult returns the owner of a fully captured line, entity.Draw when
// every cell is captured without one, or "" while the game continues.
func DetermineResult(grid entity.Grid) string {
	for _, combo := range entity.WinCombos {
		a, b, c := grid[combo[0]], grid[combo[1]], grid[combo[2]]
		if a.IsCaptured() && b.IsCaptured() && c.IsCaptured() &&
			a.Owner != "" && a.Owner == b.Owner && b.Owner == c.Owner {
			return a.Owner
		}
	}

	for _, id := range entity.CellIDs {
		if !grid[id].IsCaptured() {
			return ""
		}
	}

	return entity.Draw
}

// updateGameStatus - finishes the game when a line or a full board is reached.
func updateGameStatus(game *entity.Game) {
	if result := DetermineResult(game.Grid); result != "" {
		game.Finish(result)
	}
}
