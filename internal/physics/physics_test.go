package physics

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pongWorld(ball entity.Ball) World {
	field := DefaultField()
	return World{
		Phase:     entity.PhasePong,
		PlayState: entity.PlayStatePlaying,
		Ball:      ball,
		Paddles: [2]Paddle{
			{Position: field.PaddleStart(1)},
			{Position: field.PaddleStart(2)},
		},
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, event := range events {
		if event.Kind == kind {
			return true
		}
	}
	return false
}

func TestField(t *testing.T) {
	field := DefaultField()

	assert.Equal(t, entity.Vector{X: 20, Y: 255}, field.PaddleStart(1))
	assert.Equal(t, entity.Vector{X: 768, Y: 255}, field.PaddleStart(2))
	assert.Equal(t, 0.0, field.ClampPaddleY(-10))
	assert.Equal(t, 510.0, field.ClampPaddleY(900))
	assert.Equal(t, 100.0, field.ClampPaddleY(100))

	rect, ok := field.CellRect("11")
	require.True(t, ok)
	assert.Equal(t, Rect{X: 350, Y: 250, W: 100, H: 100}, rect)
	assert.True(t, rect.Contains(field.Center()))

	rect, ok = field.CellRect("20")
	require.True(t, ok)
	assert.Equal(t, Rect{X: 450, Y: 150, W: 100, H: 100}, rect)

	_, ok = field.CellRect("33")
	assert.False(t, ok)
}

func TestStep_Paddles(t *testing.T) {
	t.Run("Paddles never leave the field", func(t *testing.T) {
		// Given: a random sequence of held directions
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: field.Center()})
		rnd := rand.New(rand.NewSource(7))

		for range 2000 {
			// When: each tick steers the paddles at random
			for i := range world.Paddles {
				world.Paddles[i].Moving = rnd.Intn(3) != 0
				world.Paddles[i].SpeedY = float64(rnd.Intn(3)-1) * field.PaddleSpeed
			}
			world, _ = Step(field, world)

			// Then: every paddle stays in [0, height-paddleHeight]
			for _, paddle := range world.Paddles {
				require.GreaterOrEqual(t, paddle.Position.Y, 0.0)
				require.LessOrEqual(t, paddle.Position.Y, field.MaxPaddleY())
			}
		}
	})

	t.Run("Out of bounds move is not applied", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: field.Center()})
		world.Paddles[0] = Paddle{Position: entity.Vector{X: 20, Y: 508}, SpeedY: 6, Moving: true}

		world, _ = Step(field, world)

		assert.Equal(t, 508.0, world.Paddles[0].Position.Y)
	})

	t.Run("Paddle without a direction stays still", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: field.Center()})
		world.Paddles[1] = Paddle{Position: entity.Vector{X: 768, Y: 100}, SpeedY: 6}

		world, _ = Step(field, world)

		assert.Equal(t, 100.0, world.Paddles[1].Position.Y)
	})
}

func TestStep_Ball(t *testing.T) {
	t.Run("Ball moves at full speed in the pong phase", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 200, Y: 100}, Speed: entity.Vector{X: 4, Y: 2}})

		world, _ = Step(field, world)

		assert.Equal(t, entity.Vector{X: 204, Y: 102}, world.Ball.Position)
	})

	t.Run("Ball is damped in the xo phase", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 200, Y: 100}, Speed: entity.Vector{X: 4, Y: 2}})
		world.Phase = entity.PhaseXO

		world, _ = Step(field, world)

		assert.Equal(t, entity.Vector{X: 201, Y: 100.5}, world.Ball.Position)
		assert.Equal(t, entity.Vector{X: 4, Y: 2}, world.Ball.Speed)
	})

	t.Run("Ball reflects off the top wall and is clamped inside", func(t *testing.T) {
		// Given: a ball about to cross the top wall
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 200, Y: 9}, Speed: entity.Vector{X: 0, Y: -5}})

		// When: stepping once
		world, events := Step(field, world)

		// Then: vy is negated and the ball stays half a diameter inside
		assert.Equal(t, 5.0, world.Ball.Speed.Y)
		assert.Equal(t, 8.0, world.Ball.Position.Y)
		assert.True(t, hasEvent(events, EventWallBounce))
	})

	t.Run("Ball reflects off the right wall", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 790, Y: 100}, Speed: entity.Vector{X: 5, Y: 0}})

		world, _ = Step(field, world)

		assert.Equal(t, -5.0, world.Ball.Speed.X)
		assert.Equal(t, 792.0, world.Ball.Position.X)
	})
}

func TestStep_PaddleCollision(t *testing.T) {
	t.Run("Left paddle sends the ball back with spin", func(t *testing.T) {
		// Given: the ball approaching the left paddle which moves up
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 42, Y: 300}, Speed: entity.Vector{X: -5, Y: 0}})
		world.Paddles[0].SpeedY = -6
		world.Paddles[0].Moving = true

		// When: stepping once
		world, events := Step(field, world)

		// Then: vx points away at ball speed and vy gains half the paddle speed
		assert.Equal(t, 5.0, world.Ball.Speed.X)
		assert.Equal(t, -3.0, world.Ball.Speed.Y)
		require.True(t, hasEvent(events, EventPaddleHit))
	})

	t.Run("Right paddle sends the ball back to the left", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 760, Y: 300}, Speed: entity.Vector{X: 9, Y: 1}})

		world, _ = Step(field, world)

		assert.Equal(t, -5.0, world.Ball.Speed.X)
		assert.Equal(t, 1.0, world.Ball.Speed.Y)
	})

	t.Run("Ball outside the paddle box passes through", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 42, Y: 100}, Speed: entity.Vector{X: -5, Y: 0}})

		world, events := Step(field, world)

		assert.Equal(t, -5.0, world.Ball.Speed.X)
		assert.False(t, hasEvent(events, EventPaddleHit))
	})

	t.Run("Ball leaving the paddle is not hit again", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 36, Y: 300}, Speed: entity.Vector{X: 5, Y: 0}})

		world, events := Step(field, world)

		assert.Equal(t, 5.0, world.Ball.Speed.X)
		assert.False(t, hasEvent(events, EventPaddleHit))
	})
}

func TestStep_CellHit(t *testing.T) {
	t.Run("Ball entering the selected cell emits a hit", func(t *testing.T) {
		// Given: cell 11 is selected and the ball is about to enter it
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: entity.Vector{X: 347, Y: 300}, Speed: entity.Vector{X: 5, Y: 0}})
		world.Selected = "11"

		// When: stepping once
		_, events := Step(field, world)

		// Then: a single cell hit for 11 is emitted
		require.True(t, hasEvent(events, EventCellHit))
		for _, event := range events {
			if event.Kind == EventCellHit {
				assert.Equal(t, "11", event.CellID)
			}
		}
	})

	t.Run("Other cells do not count", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: field.Center()})
		world.Selected = "00"

		_, events := Step(field, world)

		assert.False(t, hasEvent(events, EventCellHit))
	})

	t.Run("No hit outside the pong phase", func(t *testing.T) {
		field := DefaultField()
		world := pongWorld(entity.Ball{Position: field.Center()})
		world.Phase = entity.PhaseXO
		world.Selected = "11"

		_, events := Step(field, world)

		assert.False(t, hasEvent(events, EventCellHit))
	})
}

func TestNewWorld(t *testing.T) {
	field := DefaultField()
	game := entity.NewGame("g1", "userA", "userB")
	game.Phase = entity.PhasePong
	game.Grid["21"] = entity.Cell{Mark: entity.MarkX, Status: entity.CellSelected, Owner: "userA"}

	seatOne := entity.NewPlayer("userA", "g1", entity.MarkX, field.PaddleStart(1))
	seatOne.SteerPaddle(entity.DirectionUp, field.PaddleSpeed)

	world := NewWorld(field, game, seatOne, nil)

	assert.Equal(t, "21", world.Selected)
	assert.Equal(t, Paddle{Position: field.PaddleStart(1), SpeedY: -6, Moving: true}, world.Paddles[0])
	assert.Equal(t, Paddle{Position: field.PaddleStart(2)}, world.Paddles[1])
}
