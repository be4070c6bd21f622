package entity

import "time"

// GameRecord is the durable trace of a match kept by the persistence collaborator.
type GameRecord struct {
	ID        string    `json:"_id"`
	Players   [2]string `json:"players"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
