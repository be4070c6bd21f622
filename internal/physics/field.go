package physics

import (
	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

// Field is the playfield geometry and the speeds the step works with.
// The cell grid is centered on the field.
type Field struct {
	Width        float64
	Height       float64
	Margin       float64
	PaddleWidth  float64
	PaddleHeight float64
	PaddleSpeed  float64
	BallSize     float64
	BallSpeed    float64
	BallSpeedMod float64
	CellSize     float64
	// HitBand is the distance from a side edge inside which paddle collisions are tested.
	HitBand float64
}

func DefaultField() Field {
	return Field{
		Width:        800,
		Height:       600,
		Margin:       20,
		PaddleWidth:  12,
		PaddleHeight: 90,
		PaddleSpeed:  6,
		BallSize:     16,
		BallSpeed:    5,
		BallSpeedMod: 0.25,
		CellSize:     100,
		HitBand:      44,
	}
}

func (that Field) Center() entity.Vector {
	return entity.Vector{X: that.Width / 2, Y: that.Height / 2}
}

// PaddleStart is the resting paddle position of a seat: seat 1 on the left margin, seat 2 mirrored on the right.
func (that Field) PaddleStart(seat int) entity.Vector {
	x := that.Margin
	if seat == 2 {
		x = that.Width - that.Margin - that.PaddleWidth
	}

	return entity.Vector{X: x, Y: (that.Height - that.PaddleHeight) / 2}
}

func (that Field) MaxPaddleY() float64 {
	return that.Height - that.PaddleHeight
}

// ClampPaddleY keeps a paddle top edge inside [0, Height-PaddleHeight].
func (that Field) ClampPaddleY(y float64) float64 {
	switch {
	case y < 0:
		return 0
	case y > that.MaxPaddleY():
		return that.MaxPaddleY()
	default:
		return y
	}
}

// Rect is an axis aligned box given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

func (that Rect) Contains(p entity.Vector) bool {
	return p.X >= that.X && p.X < that.X+that.W && p.Y >= that.Y && p.Y < that.Y+that.H
}

func (that Rect) Overlaps(other Rect) bool {
	return that.X < other.X+other.W && other.X < that.X+that.W &&
		that.Y < other.Y+other.H && other.Y < that.Y+that.H
}

// CellRect returns the box of a cell id "(col)(row)".
func (that Field) CellRect(cellID string) (Rect, bool) {
	col, row, ok := entity.ParseCellID(cellID)
	if !ok {
		return Rect{}, false
	}

	side := that.CellSize * entity.GridSize
	originX := (that.Width - side) / 2
	originY := (that.Height - side) / 2

	return Rect{
		X: originX + float64(col)*that.CellSize,
		Y: originY + float64(row)*that.CellSize,
		W: that.CellSize,
		H: that.CellSize,
	}, true
}

func (that Field) ballRect(ball entity.Vector) Rect {
	half := that.BallSize / 2
	return Rect{X: ball.X - half, Y: ball.Y - half, W: that.BallSize, H: that.BallSize}
}

func (that Field) paddleRect(paddle entity.Vector) Rect {
	return Rect{X: paddle.X, Y: paddle.Y, W: that.PaddleWidth, H: that.PaddleHeight}
}
