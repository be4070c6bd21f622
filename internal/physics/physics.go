package physics

import (
	"math"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

type EventKind string

const (
	EventCellHit    EventKind = "cell-hit"
	EventPaddleHit  EventKind = "paddle-hit"
	EventWallBounce EventKind = "wall-bounce"
)

type Event struct {
	Kind   EventKind
	CellID string
	Seat   int
}

type Paddle struct {
	Position entity.Vector
	SpeedY   float64
	// Moving is true while a direction is held.
	Moving bool
}

// World is everything one tick reads and writes.
type World struct {
	Phase     string
	PlayState string
	Ball      entity.Ball
	Paddles   [2]Paddle
	// Selected is the id of the cell waiting for a capture, "" when none.
	Selected string
}

// NewWorld builds the step input from registry records. Missing players get a still paddle at the seat start.
func NewWorld(field Field, game *entity.Game, seatOne, seatTwo *entity.Player) World {
	world := World{
		Phase:     game.Phase,
		PlayState: game.PlayState,
		Ball:      game.Ball,
	}

	for i, player := range []*entity.Player{seatOne, seatTwo} {
		if player == nil {
			world.Paddles[i] = Paddle{Position: field.PaddleStart(i + 1)}
			continue
		}

		world.Paddles[i] = Paddle{
			Position: player.Position,
			SpeedY:   player.Speed.Y,
			Moving:   player.Direction != entity.DirectionNone,
		}
	}

	for _, id := range entity.CellIDs {
		if game.Grid[id].IsSelected() {
			world.Selected = id
			break
		}
	}

	return world
}

// Step advances the world by one tick. It is a pure function of its inputs.
func Step(field Field, world World) (World, []Event) {
	var events []Event

	for i := range world.Paddles {
		world.Paddles[i] = movePaddle(field, world.Paddles[i])
	}

	mod := 1.0
	if world.Phase == entity.PhaseXO || world.PlayState == entity.PlayStateFinished {
		mod = field.BallSpeedMod
	}

	ball := world.Ball
	ball.Position.X += ball.Speed.X * mod
	ball.Position.Y += ball.Speed.Y * mod

	var bounced bool
	ball, bounced = bounceWalls(field, ball)
	if bounced {
		events = append(events, Event{Kind: EventWallBounce})
	}

	for i, paddle := range world.Paddles {
		seat := i + 1
		if hitsPaddle(field, ball, paddle.Position, seat) {
			ball.Speed.X = field.BallSpeed
			if seat == 2 {
				ball.Speed.X = -field.BallSpeed
			}
			ball.Speed.Y += paddle.SpeedY / 2

			events = append(events, Event{Kind: EventPaddleHit, Seat: seat})
		}
	}

	world.Ball = ball

	if world.Phase == entity.PhasePong && world.Selected != "" {
		if rect, ok := field.CellRect(world.Selected); ok && rect.Contains(ball.Position) {
			events = append(events, Event{Kind: EventCellHit, CellID: world.Selected})
		}
	}

	return world, events
}

// movePaddle applies the paddle speed only when the result stays inside the field.
func movePaddle(field Field, paddle Paddle) Paddle {
	if !paddle.Moving {
		return paddle
	}

	next := paddle.Position.Y + paddle.SpeedY
	if next < 0 || next > field.MaxPaddleY() {
		return paddle
	}

	paddle.Position.Y = next

	return paddle
}

func bounceWalls(field Field, ball entity.Ball) (entity.Ball, bool) {
	half := field.BallSize / 2
	var bounced bool

	if ball.Position.X < half || ball.Position.X > field.Width-half {
		ball.Speed.X = -ball.Speed.X
		ball.Position.X = math.Min(math.Max(ball.Position.X, half), field.Width-half)
		bounced = true
	}

	if ball.Position.Y < half || ball.Position.Y > field.Height-half {
		ball.Speed.Y = -ball.Speed.Y
		ball.Position.Y = math.Min(math.Max(ball.Position.Y, half), field.Height-half)
		bounced = true
	}

	return ball, bounced
}

// hitsPaddle tests the bounding boxes only while the ball travels towards the
// seat's side and its leading edge is inside the hit band.
func hitsPaddle(field Field, ball entity.Ball, paddle entity.Vector, seat int) bool {
	half := field.BallSize / 2

	switch seat {
	case 1:
		if ball.Speed.X >= 0 || ball.Position.X-half > field.HitBand {
			return false
		}
	case 2:
		if ball.Speed.X <= 0 || ball.Position.X+half < field.Width-field.HitBand {
			return false
		}
	default:
		return false
	}

	return field.ballRect(ball.Position).Overlaps(field.paddleRect(paddle))
}
