package entity

// GameView is the wire form of a match with the grid flattened to a list.
type GameView struct {
	ID        string     `json:"id" msgpack:"id"`
	Players   Seats      `json:"players" msgpack:"players"`
	Turn      string     `json:"turn" msgpack:"turn"`
	Phase     string     `json:"phase" msgpack:"phase"`
	PlayState string     `json:"playState" msgpack:"playState"`
	XoState   []WireCell `json:"xoState" msgpack:"xoState"`
	Ball      Ball       `json:"ball" msgpack:"ball"`
	Winner    *string    `json:"winner" msgpack:"winner"`
}

type PlayerView struct {
	ID        string  `json:"id" msgpack:"id"`
	GameID    string  `json:"gameId" msgpack:"gameId"`
	Mark      string  `json:"mark" msgpack:"mark"`
	Connected bool    `json:"connected" msgpack:"connected"`
	SocketID  string  `json:"socketId" msgpack:"socketId"`
	Position  Vector  `json:"position" msgpack:"position"`
	Y         float64 `json:"y" msgpack:"y"`
	Direction *string `json:"direction" msgpack:"direction"`
	Speed     Vector  `json:"speed" msgpack:"speed"`
}

// Snapshot is the full state of a match as served to clients.
type Snapshot struct {
	Game    GameView              `json:"game" msgpack:"game"`
	Players map[string]PlayerView `json:"players" msgpack:"players"`
}

func (that *Game) View() GameView {
	return GameView{
		ID:        that.ID,
		Players:   that.Players,
		Turn:      that.Turn,
		Phase:     that.Phase,
		PlayState: that.PlayState,
		XoState:   GridToWire(that.Grid),
		Ball:      that.Ball,
		Winner:    nullable(that.Winner),
	}
}

func (that *Player) View() PlayerView {
	return PlayerView{
		ID:        that.ID,
		GameID:    that.GameID,
		Mark:      that.Mark,
		Connected: that.Connected,
		SocketID:  that.SessionID,
		Position:  that.Position,
		Y:         that.Position.Y,
		Direction: nullable(that.Direction),
		Speed:     that.Speed,
	}
}

// NewSnapshot keeps only players still attached to the game.
func NewSnapshot(game *Game, players ...*Player) Snapshot {
	views := make(map[string]PlayerView, len(players))
	for _, player := range players {
		if player == nil || player.GameID != game.ID {
			continue
		}
		views[player.ID] = player.View()
	}

	return Snapshot{
		Game:    game.View(),
		Players: views,
	}
}
