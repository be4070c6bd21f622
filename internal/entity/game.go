package entity

import (
	"fmt"

	"github.com/rocketscienceinc/xong-backend/internal/apperror"
)

const (
	PlayStateWaiting  = "waiting_for_players"
	PlayStateStarting = "starting"
	PlayStatePlaying  = "playing"
	PlayStatePaused   = "paused"
	PlayStateFinished = "finished"

	PhaseXO   = "xo"
	PhasePong = "pong"

	MarkX = "x"
	MarkO = "o"

	CellSelected = "selected"
	CellCaptured = "captured"

	// Draw is stored in Game.Winner when every cell is captured without a line.
	Draw = "draw"

	EmptyCell = ""
)

// Vector is a point or a velocity in field coordinates.
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

type Ball struct {
	Position Vector `json:"position" msgpack:"position"`
	Speed    Vector `json:"speed" msgpack:"speed"`
}

// Seats holds the two seated players. Seat assignment never changes.
type Seats struct {
	One string `json:"1" msgpack:"1"`
	Two string `json:"2" msgpack:"2"`
}

func (that Seats) Has(userID string) bool {
	return userID != "" && (that.One == userID || that.Two == userID)
}

// SeatOf returns 1 or 2, or 0 when userID is not seated.
func (that Seats) SeatOf(userID string) int {
	switch {
	case userID == "":
		return 0
	case that.One == userID:
		return 1
	case that.Two == userID:
		return 2
	default:
		return 0
	}
}

// Other returns the opponent of userID, or "" when userID is not seated.
func (that Seats) Other(userID string) string {
	switch that.SeatOf(userID) {
	case 1:
		return that.Two
	case 2:
		return that.One
	default:
		return ""
	}
}

func (that Seats) IDs() [2]string {
	return [2]string{that.One, that.Two}
}

type Game struct {
	ID        string `json:"id"`
	Players   Seats  `json:"players"`
	Turn      string `json:"turn"`
	Phase     string `json:"phase"`
	PlayState string `json:"playState"`
	Grid      Grid   `json:"-"`
	Ball      Ball   `json:"ball"`
	Winner    string `json:"winner"`
	// Round increments on launch and on every capture; deferred tasks use it to detect staleness.
	Round int `json:"round"`
}

// NewGame returns a match waiting for both seated players. The ball is parked off-field.
func NewGame(id, seatOne, seatTwo string) *Game {
	return &Game{
		ID:        id,
		Players:   Seats{One: seatOne, Two: seatTwo},
		Turn:      seatOne,
		Phase:     PhaseXO,
		PlayState: PlayStateWaiting,
		Grid:      NewGrid(),
		Ball: Ball{
			Position: Vector{X: -100, Y: -100},
		},
	}
}

// Clone returns a deep copy safe to mutate.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Grid = that.Grid.Clone()
	return &clone
}

func (that *Game) IsFinished() bool {
	return that.PlayState == PlayStateFinished
}

func (that *Game) IsPlaying() bool {
	return that.PlayState == PlayStatePlaying
}

func (that *Game) IsStarting() bool {
	return that.PlayState == PlayStateStarting
}

func (that *Game) IsWaiting() bool {
	return that.PlayState == PlayStateWaiting
}

// ConfirmPlaying returns nil only while the ball is in play.
func (that *Game) ConfirmPlaying() error {
	switch that.PlayState {
	case PlayStatePlaying:
		return nil
	case PlayStateFinished:
		return apperror.ErrGameFinished
	case PlayStateWaiting, PlayStateStarting, PlayStatePaused:
		return apperror.ErrGameIsNotStarted
	default:
		return fmt.Errorf("%w: unknown play state %q", apperror.ErrInvalidPlayState, that.PlayState)
	}
}

// MarkOf returns the fixed mark of a seat: x for seat 1, o for seat 2.
func (that *Game) MarkOf(userID string) string {
	switch that.Players.SeatOf(userID) {
	case 1:
		return MarkX
	case 2:
		return MarkO
	default:
		return ""
	}
}

// Finish makes the match terminal. winner is a seated player id or Draw.
func (that *Game) Finish(winner string) {
	that.PlayState = PlayStateFinished
	that.Winner = winner
}

func IsValidPlayState(state string) bool {
	switch state {
	case PlayStateWaiting, PlayStateStarting, PlayStatePlaying, PlayStatePaused, PlayStateFinished:
		return true
	default:
		return false
	}
}
