package apperror

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is the root of every state machine precondition failure.
// Actions failing with it are dropped without notifying clients.
var ErrInvalidAction = errors.New("invalid action")

var (
	ErrGameFinished     = fmt.Errorf("%w: game is already finished", ErrInvalidAction)
	ErrGameIsNotStarted = fmt.Errorf("%w: game is not started", ErrInvalidAction)
	ErrNotYourTurn      = fmt.Errorf("%w: it's not your turn", ErrInvalidAction)
	ErrCellOccupied     = fmt.Errorf("%w: cell is already occupied", ErrInvalidAction)
	ErrCellNotSelected  = fmt.Errorf("%w: cell is not selected", ErrInvalidAction)
	ErrInvalidCell      = fmt.Errorf("%w: invalid cell id", ErrInvalidAction)
	ErrWrongPhase       = fmt.Errorf("%w: wrong game phase", ErrInvalidAction)
	ErrNotAPlayer       = fmt.Errorf("%w: user is not a player of this game", ErrInvalidAction)
	ErrInvalidPlayState = fmt.Errorf("%w: play state transition is not allowed", ErrInvalidAction)
	ErrAlreadyStarted   = fmt.Errorf("%w: game is already started", ErrInvalidAction)
	ErrStaleRound       = fmt.Errorf("%w: round has already changed", ErrInvalidAction)
)

var ErrCollaborator = errors.New("collaborator failure")

// IsInvalidAction reports whether err is a precondition failure.
func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}
