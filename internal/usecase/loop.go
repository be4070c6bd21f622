package usecase

import (
	"context"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/apperror"
	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
)

// startLoop runs the physics of a match until it finishes or is removed.
// Paused matches keep their loop but are not stepped.
func (that *GameManager) startLoop(gameID string) {
	that.loopsMu.Lock()
	defer that.loopsMu.Unlock()

	if _, running := that.loops[gameID]; running || that.closed {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	that.loops[gameID] = cancel

	that.wg.Add(1)
	go that.runLoop(ctx, gameID)
}

func (that *GameManager) runLoop(ctx context.Context, gameID string) {
	log := that.logger.With("method", "runLoop", "gameID", gameID)

	defer that.wg.Done()
	defer func() {
		that.loopsMu.Lock()
		if cancel, ok := that.loops[gameID]; ok {
			cancel()
			delete(that.loops, gameID)
		}
		that.loopsMu.Unlock()
	}()

	ticker := time.NewTicker(that.settings.Tick)
	defer ticker.Stop()

	log.Info("physics loop started", "tick", that.settings.Tick)

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !that.stepOnce(ctx, gameID, tick) {
			log.Info("physics loop stopped")
			return
		}
	}
}

// stepOnce advances one tick and reports whether the loop should continue.
func (that *GameManager) stepOnce(ctx context.Context, gameID string, tick int) bool {
	log := that.logger.With("method", "stepOnce", "gameID", gameID)

	game, err := that.registry.GetGame(gameID)
	if err != nil || game.IsFinished() {
		return false
	}

	if !game.IsPlaying() {
		return true
	}

	seats, err := that.registry.ListPlayersOf(gameID)
	if err != nil {
		return false
	}

	field := that.settings.Field
	next, events := physics.Step(field, physics.NewWorld(field, game, seats[0], seats[1]))

	updated, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		if !game.IsPlaying() {
			return apperror.ErrGameIsNotStarted
		}

		game.Ball = next.Ball

		return nil
	})
	if err != nil {
		return true
	}

	for i, player := range seats {
		if player == nil || next.Paddles[i].Position.Y == player.Position.Y {
			continue
		}

		that.movePaddle(gameID, player, next.Paddles[i].Position.Y)
	}

	if tick%that.settings.BroadcastEvery == 0 {
		that.broadcaster.EmitToRoom(gameID, entity.EventBallTick, entity.BallTickPayload{
			Position: updated.Ball.Position,
			Speed:    updated.Ball.Speed,
		})
	}

	for _, event := range events {
		if event.Kind != physics.EventCellHit {
			continue
		}

		if err = that.capture(ctx, gameID, game.Turn, event.CellID); err != nil {
			log.Debug("cell hit ignored", "cellID", event.CellID, "reason", err)
		}
	}

	return true
}

// movePaddle writes the stepped paddle position back unless a key event
// changed the paddle after read was taken.
func (that *GameManager) movePaddle(gameID string, read *entity.Player, y float64) {
	_, _ = that.registry.UpdatePlayer(read.ID, func(player *entity.Player) error {
		if player.GameID != gameID ||
			player.Position.Y != read.Position.Y ||
			player.Direction != read.Direction {
			return nil
		}

		player.Position.Y = y

		return nil
	})
}

// Shutdown stops every physics loop and waits for them to exit.
func (that *GameManager) Shutdown() {
	that.loopsMu.Lock()
	that.closed = true
	for _, cancel := range that.loops {
		cancel()
	}
	that.loopsMu.Unlock()

	that.wg.Wait()
}

func (that *GameManager) runningLoops() int {
	that.loopsMu.Lock()
	defer that.loopsMu.Unlock()

	return len(that.loops)
}
