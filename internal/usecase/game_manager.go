package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/apperror"
	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
	"github.com/rocketscienceinc/xong-backend/internal/tictactoe"
)

type broadcaster interface {
	JoinRoom(sessionID, roomID string)
	LeaveRoom(sessionID, roomID string)
	EmitToRoom(roomID, event string, payload any)
	EmitToSession(sessionID, event string, payload any)
}

type registry interface {
	GetGame(id string) (*entity.Game, error)
	UpdateGame(id string, mutator func(game *entity.Game) error) (*entity.Game, error)
	GetPlayer(id string) (*entity.Player, error)
	UpdatePlayer(id string, mutator func(player *entity.Player) error) (*entity.Player, error)
	ListPlayersOf(gameID string) ([2]*entity.Player, error)
	PlayersBySession(sessionID string) []*entity.Player
	ScheduleRemoval(id string) bool
}

type taskScheduler interface {
	After(d time.Duration, fn func()) bool
}

type resultRecorder interface {
	SaveResult(ctx context.Context, id, winner string) error
}

type Settings struct {
	Field          physics.Field
	Tick           time.Duration
	BroadcastEvery int
	Countdown      time.Duration
	PickTimeout    time.Duration
}

// GameManager runs the match state machine: one method per inbound event,
// the start countdown, the pick deadline and one physics loop per playing match.
type GameManager struct {
	logger      *slog.Logger
	registry    registry
	scheduler   taskScheduler
	broadcaster broadcaster
	recorder    resultRecorder
	settings    Settings
	intn        func(n int) int

	loopsMu sync.Mutex
	loops   map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup

	// deadlines holds the generation of the last pick timer armed per match.
	deadlinesMu sync.Mutex
	deadlines   map[string]uint64
}

// NewGameManager - recorder may be nil when the persistence collaborator keeps no results.
func NewGameManager(
	logger *slog.Logger,
	registry registry,
	scheduler taskScheduler,
	broadcaster broadcaster,
	recorder resultRecorder,
	settings Settings,
) *GameManager {
	if settings.BroadcastEvery < 1 {
		settings.BroadcastEvery = 1
	}

	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		registry:    registry,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		recorder:    recorder,
		settings:    settings,
		intn:        rand.IntN,

		loops:     make(map[string]context.CancelFunc),
		deadlines: make(map[string]uint64),
	}
}

// JoinMatch binds the session to the match room and sends it the full snapshot.
// A seated player is marked connected and may trigger the start countdown.
func (that *GameManager) JoinMatch(ctx context.Context, sessionID, gameID, userID string) error {
	log := that.logger.With("method", "JoinMatch", "gameID", gameID, "userID", userID)

	game, err := that.registry.GetGame(gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	that.broadcaster.JoinRoom(sessionID, gameID)

	seats, err := that.registry.ListPlayersOf(gameID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	that.broadcaster.EmitToSession(sessionID, entity.EventUserJoinedGame, entity.NewSnapshot(game, seats[0], seats[1]))

	if !game.Players.Has(userID) {
		log.Info("spectator joined")
		return nil
	}

	_, err = that.registry.UpdatePlayer(userID, func(player *entity.Player) error {
		player.Connected = true
		player.SessionID = sessionID
		player.GameID = gameID
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect player: %w", err)
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerConnectUpdate, entity.PlayerConnectPayload{
		UserID:    userID,
		Connected: true,
	})

	log.Info("player connected")

	return that.startIfReady(ctx, gameID)
}

// startIfReady moves the match to starting once both seats are connected.
func (that *GameManager) startIfReady(_ context.Context, gameID string) error {
	log := that.logger.With("method", "startIfReady", "gameID", gameID)

	seats, err := that.registry.ListPlayersOf(gameID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	for _, player := range seats {
		if player == nil || !player.Connected {
			return nil
		}
	}

	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		return tictactoe.StartCountdown(game, that.settings.Field.Center())
	})
	if apperror.IsInvalidAction(err) {
		log.Debug("match not startable", "reason", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventGamePlayStateUpdate, playStatePayload(game))

	that.scheduler.After(that.settings.Countdown, func() {
		that.launch(gameID)
	})

	log.Info("countdown started", "countdown", that.settings.Countdown)

	return nil
}

// launch ends the countdown unless the match changed in the meantime.
func (that *GameManager) launch(gameID string) {
	log := that.logger.With("method", "launch", "gameID", gameID)

	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		return tictactoe.Launch(game, that.settings.Field.BallSpeed)
	})
	if err != nil {
		log.Info("countdown dropped", "reason", err)
		return
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventGamePlayStateUpdate, playStatePayload(game))
	that.startLoop(gameID)
	that.armPickTimer(gameID, game.Round)

	log.Info("game launched")
}

// LeaveMatch removes the session from the room. A seated player leaving an
// unfinished match forfeits it.
func (that *GameManager) LeaveMatch(ctx context.Context, sessionID, gameID, userID string) error {
	log := that.logger.With("method", "LeaveMatch", "gameID", gameID, "userID", userID)

	that.broadcaster.LeaveRoom(sessionID, gameID)

	game, err := that.registry.GetGame(gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	isPlayer := game.Players.Has(userID)
	winner := game.Winner

	if isPlayer {
		finished, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
			return tictactoe.Forfeit(game, userID)
		})

		switch {
		case err == nil:
			winner = finished.Winner
			that.finish(ctx, finished)
		case errors.Is(err, apperror.ErrGameFinished):
		default:
			return fmt.Errorf("failed to forfeit game: %w", err)
		}
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventUserLeftGame, entity.NewUserLeftGame(userID, isPlayer, winner))

	log.Info("user left game", "isPlayer", isPlayer)

	return nil
}

func (that *GameManager) SetPlayState(_ context.Context, gameID, userID, playState string) error {
	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		return tictactoe.SetPlayState(game, userID, playState, that.settings.Field.BallSpeed)
	})
	if err != nil {
		return fmt.Errorf("failed to set play state: %w", err)
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventGamePlayStateUpdate, playStatePayload(game))

	if game.IsPlaying() {
		that.startLoop(gameID)
		that.armPickTimer(gameID, game.Round)
	}

	return nil
}

func (that *GameManager) KeyDown(_ context.Context, gameID, userID, direction string) error {
	if err := that.steer(gameID, userID, direction, nil); err != nil {
		return err
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerKeyDown, entity.NewKeyDown(userID, direction))

	return nil
}

// KeyUp adopts the client paddle position, clamped to the field.
func (that *GameManager) KeyUp(_ context.Context, gameID, userID, direction string, y float64) error {
	y = that.settings.Field.ClampPaddleY(y)

	if err := that.steer(gameID, userID, direction, &y); err != nil {
		return err
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerKeyUp, entity.NewKeyUp(userID, direction, y))

	return nil
}

func (that *GameManager) steer(gameID, userID, direction string, y *float64) error {
	if !entity.IsValidDirection(direction) {
		return fmt.Errorf("%w: direction %q", apperror.ErrInvalidAction, direction)
	}

	game, err := that.registry.GetGame(gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	if !game.Players.Has(userID) {
		return apperror.ErrNotAPlayer
	}

	_, err = that.registry.UpdatePlayer(userID, func(player *entity.Player) error {
		if player.GameID != gameID {
			return apperror.ErrNotAPlayer
		}

		player.SteerPaddle(direction, that.settings.Field.PaddleSpeed)
		if y != nil {
			player.Position.Y = *y
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to steer paddle: %w", err)
	}

	return nil
}

func (that *GameManager) SelectCell(_ context.Context, gameID, userID, cellID string) error {
	player, err := that.registry.GetPlayer(userID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID != gameID {
		return apperror.ErrNotAPlayer
	}

	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		return tictactoe.SelectCell(game, userID, player.Mark, cellID)
	})
	if err != nil {
		return fmt.Errorf("failed to select cell: %w", err)
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerSelectCell, entity.NewSelectCell(game))

	return nil
}

// HitCell captures the selected cell on behalf of the turn player.
func (that *GameManager) HitCell(ctx context.Context, gameID, userID, cellID string) error {
	return that.capture(ctx, gameID, userID, cellID)
}

func (that *GameManager) capture(ctx context.Context, gameID, userID, cellID string) error {
	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		return tictactoe.CaptureCell(game, userID, cellID)
	})
	if err != nil {
		return fmt.Errorf("failed to capture cell: %w", err)
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerHitCell, entity.NewHitCell(game))

	if game.IsFinished() {
		that.finish(ctx, game)
		return nil
	}

	that.armPickTimer(gameID, game.Round)

	return nil
}

// Disconnect marks every seated player bound to the session as disconnected.
func (that *GameManager) Disconnect(_ context.Context, sessionID string) {
	log := that.logger.With("method", "Disconnect", "sessionID", sessionID)

	for _, bound := range that.registry.PlayersBySession(sessionID) {
		player, err := that.registry.UpdatePlayer(bound.ID, func(player *entity.Player) error {
			if player.SessionID != sessionID {
				return nil
			}

			player.Connected = false
			player.SessionID = ""
			player.SteerPaddle(entity.DirectionNone, 0)

			return nil
		})
		if err != nil {
			log.Warn("failed to disconnect player", "userID", bound.ID, "error", err)
			continue
		}

		if player.GameID == "" {
			continue
		}

		that.broadcaster.EmitToRoom(player.GameID, entity.EventPlayerConnectUpdate, entity.PlayerConnectPayload{
			UserID:    player.ID,
			Connected: false,
		})

		log.Info("player disconnected", "userID", player.ID, "gameID", player.GameID)
	}
}

func (that *GameManager) Snapshot(_ context.Context, gameID string) (entity.Snapshot, error) {
	game, err := that.registry.GetGame(gameID)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get game: %w", err)
	}

	seats, err := that.registry.ListPlayersOf(gameID)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to list players: %w", err)
	}

	return entity.NewSnapshot(game, seats[0], seats[1]), nil
}

// finish schedules the removal of a terminal match and records its result.
func (that *GameManager) finish(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finish", "gameID", game.ID)

	that.registry.ScheduleRemoval(game.ID)
	that.dropDeadline(game.ID)

	if that.recorder != nil {
		if err := that.recorder.SaveResult(ctx, game.ID, game.Winner); err != nil {
			log.Error("failed to record result", "error", err)
		}
	}

	log.Info("game finished", "winner", game.Winner)
}

// armPickTimer selects a random free cell for the turn player when round is
// still current once the pick timeout elapses. Arming replaces the previous
// deadline of the match.
func (that *GameManager) armPickTimer(gameID string, round int) {
	if that.settings.PickTimeout <= 0 {
		return
	}

	generation := that.nextDeadline(gameID)

	that.scheduler.After(that.settings.PickTimeout, func() {
		that.autoPick(gameID, round, generation)
	})
}

func (that *GameManager) nextDeadline(gameID string) uint64 {
	that.deadlinesMu.Lock()
	defer that.deadlinesMu.Unlock()

	that.deadlines[gameID]++

	return that.deadlines[gameID]
}

func (that *GameManager) isCurrentDeadline(gameID string, generation uint64) bool {
	that.deadlinesMu.Lock()
	defer that.deadlinesMu.Unlock()

	return that.deadlines[gameID] == generation
}

func (that *GameManager) dropDeadline(gameID string) {
	that.deadlinesMu.Lock()
	defer that.deadlinesMu.Unlock()

	delete(that.deadlines, gameID)
}

// autoPick forces the pick of a connected turn player. While the turn player is
// away the deadline is armed again instead.
func (that *GameManager) autoPick(gameID string, round int, generation uint64) {
	log := that.logger.With("method", "autoPick", "gameID", gameID, "round", round)

	if !that.isCurrentDeadline(gameID, generation) {
		log.Debug("pick deadline replaced")
		return
	}

	current, err := that.registry.GetGame(gameID)
	if err != nil {
		log.Debug("pick deadline dropped", "reason", err)
		return
	}

	if current.Round == round && current.IsPlaying() && current.Phase == entity.PhaseXO {
		turn, err := that.registry.GetPlayer(current.Turn)
		if err == nil && !turn.Connected {
			log.Debug("turn player away, pick deadline rearmed", "userID", current.Turn)
			that.armPickTimer(gameID, round)
			return
		}
	}

	game, err := that.registry.UpdateGame(gameID, func(game *entity.Game) error {
		cellID, err := tictactoe.PickRandomCell(game, round, that.intn)
		if err != nil {
			return err
		}

		return tictactoe.SelectCell(game, game.Turn, game.MarkOf(game.Turn), cellID)
	})
	if err != nil {
		log.Debug("pick deadline dropped", "reason", err)
		return
	}

	that.broadcaster.EmitToRoom(gameID, entity.EventPlayerSelectCell, entity.NewSelectCell(game))

	log.Info("cell picked after deadline", "userID", game.Turn)
}

func playStatePayload(game *entity.Game) entity.PlayStatePayload {
	ball := game.Ball
	return entity.PlayStatePayload{
		PlayState: game.PlayState,
		Ball:      &ball,
	}
}
