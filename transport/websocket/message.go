package websocket

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

var (
	ErrEmptyPayload   = errors.New("payload is required")
	ErrInvalidPayload = errors.New("invalid payload")
)

type MatchPayload struct {
	GameID string `json:"gameId" msgpack:"gameId"`
	UserID string `json:"userId" msgpack:"userId"`
}

func (that MatchPayload) validate() error {
	if that.GameID == "" {
		return fmt.Errorf("%w: gameId is required", ErrInvalidPayload)
	}

	if that.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidPayload)
	}

	return nil
}

type PlayStatePayload struct {
	MatchPayload `msgpack:",inline"`
	PlayState    string `json:"playState" msgpack:"playState"`
}

func (that PlayStatePayload) validate() error {
	if err := that.MatchPayload.validate(); err != nil {
		return err
	}

	if !entity.IsValidPlayState(that.PlayState) {
		return fmt.Errorf("%w: unknown playState %q", ErrInvalidPayload, that.PlayState)
	}

	return nil
}

type KeyPayload struct {
	MatchPayload `msgpack:",inline"`
	Direction    *string  `json:"direction" msgpack:"direction"`
	Y            *float64 `json:"y,omitempty" msgpack:"y,omitempty"`
}

func (that KeyPayload) direction() string {
	if that.Direction == nil {
		return entity.DirectionNone
	}

	return *that.Direction
}

func (that KeyPayload) validate() error {
	if err := that.MatchPayload.validate(); err != nil {
		return err
	}

	if !entity.IsValidDirection(that.direction()) {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidPayload, that.direction())
	}

	return nil
}

type CellPayload struct {
	MatchPayload `msgpack:",inline"`
	CellID       string `json:"cellId" msgpack:"cellId"`
}

func (that CellPayload) validate() error {
	if err := that.MatchPayload.validate(); err != nil {
		return err
	}

	if !entity.IsValidCellID(that.CellID) {
		return fmt.Errorf("%w: unknown cellId %q", ErrInvalidPayload, that.CellID)
	}

	return nil
}

type QueuePayload struct {
	UserID string `json:"userId" msgpack:"userId"`
}

func (that QueuePayload) validate() error {
	if that.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidPayload)
	}

	return nil
}
