package entity

const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionNone = ""
)

type Player struct {
	ID        string `json:"id"`
	GameID    string `json:"gameId"`
	Mark      string `json:"mark"`
	Connected bool   `json:"connected"`
	SessionID string `json:"socketId"`
	Position  Vector `json:"position"`
	Direction string `json:"direction"`
	Speed     Vector `json:"speed"`
}

// NewPlayer seeds a seated player with a resting paddle at position.
func NewPlayer(id, gameID, mark string, position Vector) *Player {
	return &Player{
		ID:       id,
		GameID:   gameID,
		Mark:     mark,
		Position: position,
	}
}

func (that *Player) Clone() *Player {
	clone := *that
	return &clone
}

// SteerPaddle sets the direction and the matching vertical speed.
func (that *Player) SteerPaddle(direction string, paddleSpeed float64) {
	that.Direction = direction

	switch direction {
	case DirectionUp:
		that.Speed.Y = -paddleSpeed
	case DirectionDown:
		that.Speed.Y = paddleSpeed
	default:
		that.Speed.Y = 0
	}
}

func IsValidDirection(direction string) bool {
	switch direction {
	case DirectionUp, DirectionDown, DirectionNone:
		return true
	default:
		return false
	}
}
