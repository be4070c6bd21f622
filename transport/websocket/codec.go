package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codecJSON    = "json"
	codecMsgpack = "msgpack"
)

var ErrUnknownCodec = errors.New("unknown codec")

// Message is the envelope of every frame in both directions.
type Message struct {
	Event   string `json:"event" msgpack:"event"`
	Payload any    `json:"payload" msgpack:"payload"`
}

type jsonInbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type msgpackInbound struct {
	Event   string             `msgpack:"event"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// codec frames envelopes for one connection. Inbound payloads stay raw until a handler
// knows which struct to decode them into.
type codec interface {
	Name() string
	FrameType() int
	Encode(msg Message) ([]byte, error)
	DecodeEnvelope(data []byte) (event string, payload []byte, err error)
	DecodePayload(payload []byte, v any) error
}

func codecByName(name string) (codec, error) {
	switch name {
	case "", codecJSON:
		return jsonCodec{}, nil
	case codecMsgpack:
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecJSON }

func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func (jsonCodec) DecodeEnvelope(data []byte) (string, []byte, error) {
	var msg jsonInbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return msg.Event, msg.Payload, nil
}

func (jsonCodec) DecodePayload(payload []byte, v any) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return codecMsgpack }

func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(msg Message) ([]byte, error) {
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func (msgpackCodec) DecodeEnvelope(data []byte) (string, []byte, error) {
	var msg msgpackInbound
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return msg.Event, msg.Payload, nil
}

func (msgpackCodec) DecodePayload(payload []byte, v any) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}
