package websocket

import (
	"context"
	"fmt"
)

type validator interface {
	validate() error
}

func decode[T validator](s *session, payload []byte) (T, error) {
	var out T

	if err := s.codec.DecodePayload(payload, &out); err != nil {
		return out, err
	}

	if err := out.validate(); err != nil {
		return out, err
	}

	return out, nil
}

func (that *Server) handleJoinGame(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[MatchPayload](s, payload)
	if err != nil {
		return err
	}

	if err = that.manager.JoinMatch(ctx, s.id, req.GameID, req.UserID); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[MatchPayload](s, payload)
	if err != nil {
		return err
	}

	if err = that.manager.LeaveMatch(ctx, s.id, req.GameID, req.UserID); err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	return nil
}

func (that *Server) handlePlayState(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[PlayStatePayload](s, payload)
	if err != nil {
		return err
	}

	return that.manager.SetPlayState(ctx, req.GameID, req.UserID, req.PlayState)
}

func (that *Server) handleKeyDown(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[KeyPayload](s, payload)
	if err != nil {
		return err
	}

	return that.manager.KeyDown(ctx, req.GameID, req.UserID, req.direction())
}

func (that *Server) handleKeyUp(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[KeyPayload](s, payload)
	if err != nil {
		return err
	}

	if req.Y == nil {
		return fmt.Errorf("%w: y is required", ErrInvalidPayload)
	}

	return that.manager.KeyUp(ctx, req.GameID, req.UserID, req.direction(), *req.Y)
}

func (that *Server) handleSelectCell(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[CellPayload](s, payload)
	if err != nil {
		return err
	}

	return that.manager.SelectCell(ctx, req.GameID, req.UserID, req.CellID)
}

func (that *Server) handleHitCell(ctx context.Context, s *session, payload []byte) error {
	req, err := decode[CellPayload](s, payload)
	if err != nil {
		return err
	}

	return that.manager.HitCell(ctx, req.GameID, req.UserID, req.CellID)
}

func (that *Server) handleQueue(_ context.Context, s *session, payload []byte) error {
	req, err := decode[QueuePayload](s, payload)
	if err != nil {
		return err
	}

	that.matchmaker.Enqueue(req.UserID, s.id)

	return nil
}
