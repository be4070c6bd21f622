package entity

// Event names shared by inbound and outbound messages.
const (
	EventUserJoinedGame      = "user-joined-game"
	EventUserLeftGame        = "user-left-game"
	EventPlayerConnectUpdate = "player-connect-update"
	EventGamePlayStateUpdate = "game-playstate-update"
	EventPlayerKeyDown       = "player-key-down"
	EventPlayerKeyUp         = "player-key-up"
	EventPlayerSelectCell    = "player-select-cell"
	EventPlayerHitCell       = "player-hit-cell"
	EventBallTick            = "ball-tick"
	EventQueue               = "queue"
	EventGameReady           = "game-ready"
	EventGameCreated         = "game-created"
	EventGameCreateFail      = "game-create-fail"
)

const ReasonPlayerLeft = "Player left"

type UserLeftGamePayload struct {
	UserID   string  `json:"userId" msgpack:"userId"`
	IsPlayer bool    `json:"isPlayer" msgpack:"isPlayer"`
	Reason   *string `json:"reason" msgpack:"reason"`
	Winner   *string `json:"winner" msgpack:"winner"`
}

type PlayerConnectPayload struct {
	UserID    string `json:"userId" msgpack:"userId"`
	Connected bool   `json:"connected" msgpack:"connected"`
}

type PlayStatePayload struct {
	PlayState string `json:"playState" msgpack:"playState"`
	Ball      *Ball  `json:"ball,omitempty" msgpack:"ball,omitempty"`
}

type KeyDownPayload struct {
	UserID    string  `json:"userId" msgpack:"userId"`
	Direction *string `json:"direction" msgpack:"direction"`
}

type KeyUpPayload struct {
	UserID    string  `json:"userId" msgpack:"userId"`
	Direction *string `json:"direction" msgpack:"direction"`
	Y         float64 `json:"y" msgpack:"y"`
}

type SelectCellPayload struct {
	XoState []WireCell `json:"xoState" msgpack:"xoState"`
	Phase   string     `json:"phase" msgpack:"phase"`
}

type HitCellPayload struct {
	XoState   []WireCell `json:"xoState" msgpack:"xoState"`
	Turn      string     `json:"turn" msgpack:"turn"`
	Phase     string     `json:"phase" msgpack:"phase"`
	PlayState string     `json:"playState" msgpack:"playState"`
	Winner    *string    `json:"winner" msgpack:"winner"`
}

type BallTickPayload struct {
	Position Vector `json:"position" msgpack:"position"`
	Speed    Vector `json:"speed" msgpack:"speed"`
}

type GameCreatedPayload struct {
	GameID string `json:"gameId" msgpack:"gameId"`
}

// NewUserLeftGame builds the departure notice. A seated leaver carries the forfeit reason and winner.
func NewUserLeftGame(userID string, isPlayer bool, winner string) UserLeftGamePayload {
	payload := UserLeftGamePayload{
		UserID:   userID,
		IsPlayer: isPlayer,
	}

	if isPlayer {
		payload.Reason = nullable(ReasonPlayerLeft)
		payload.Winner = nullable(winner)
	}

	return payload
}

func NewHitCell(game *Game) HitCellPayload {
	return HitCellPayload{
		XoState:   GridToWire(game.Grid),
		Turn:      game.Turn,
		Phase:     game.Phase,
		PlayState: game.PlayState,
		Winner:    nullable(game.Winner),
	}
}

func NewSelectCell(game *Game) SelectCellPayload {
	return SelectCellPayload{
		XoState: GridToWire(game.Grid),
		Phase:   game.Phase,
	}
}

func NewKeyDown(userID, direction string) KeyDownPayload {
	return KeyDownPayload{UserID: userID, Direction: nullable(direction)}
}

func NewKeyUp(userID, direction string, y float64) KeyUpPayload {
	return KeyUpPayload{UserID: userID, Direction: nullable(direction), Y: y}
}
