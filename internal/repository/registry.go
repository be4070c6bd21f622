package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrGameAlreadyExists = errors.New("game already exists")
)

type taskScheduler interface {
	After(d time.Duration, fn func()) bool
}

// Registry owns every live match and player record. Readers get copies and
// writers go through mutators applied to a private clone.
// Mutators run under the registry lock and must not call back into the registry.
type Registry struct {
	logger       *slog.Logger
	scheduler    taskScheduler
	removalDelay time.Duration

	mu       sync.RWMutex
	games    map[string]*entity.Game
	players  map[string]*entity.Player
	removals map[string]struct{}
}

func NewRegistry(logger *slog.Logger, scheduler taskScheduler, removalDelay time.Duration) *Registry {
	return &Registry{
		logger:       logger.With("component", "registry"),
		scheduler:    scheduler,
		removalDelay: removalDelay,

		games:    make(map[string]*entity.Game),
		players:  make(map[string]*entity.Player),
		removals: make(map[string]struct{}),
	}
}

// CreateGame registers a match together with its two seated players.
// Existing records of the same users are replaced.
func (that *Registry) CreateGame(game *entity.Game, seatOne, seatTwo *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[game.ID]; ok {
		return fmt.Errorf("%w: %s", ErrGameAlreadyExists, game.ID)
	}

	that.games[game.ID] = game.Clone()
	that.players[seatOne.ID] = seatOne.Clone()
	that.players[seatTwo.ID] = seatTwo.Clone()

	return nil
}

func (that *Registry) GetGame(id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	return game.Clone(), nil
}

// UpdateGame replaces the stored match with the mutated clone when mutator returns nil.
// On error the stored match is left as it was and the mutator error is returned.
func (that *Registry) UpdateGame(id string, mutator func(game *entity.Game) error) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	next := current.Clone()
	if err := mutator(next); err != nil {
		return nil, err
	}

	that.games[id] = next

	return next.Clone(), nil
}

func (that *Registry) GetPlayer(id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}

	return player.Clone(), nil
}

func (that *Registry) UpdatePlayer(id string, mutator func(player *entity.Player) error) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}

	next := current.Clone()
	if err := mutator(next); err != nil {
		return nil, err
	}

	that.players[id] = next

	return next.Clone(), nil
}

// ListPlayersOf returns copies of [seat1, seat2]. A seat whose player is gone
// or attached to another match is nil.
func (that *Registry) ListPlayersOf(gameID string) ([2]*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var seats [2]*entity.Player

	game, ok := that.games[gameID]
	if !ok {
		return seats, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	for i, id := range game.Players.IDs() {
		player, ok := that.players[id]
		if !ok || player.GameID != gameID {
			continue
		}
		seats[i] = player.Clone()
	}

	return seats, nil
}

// PlayersBySession returns copies of every player bound to a transport session.
func (that *Registry) PlayersBySession(sessionID string) []*entity.Player {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var found []*entity.Player
	for _, player := range that.players {
		if sessionID != "" && player.SessionID == sessionID {
			found = append(found, player.Clone())
		}
	}

	return found
}

// ScheduleRemoval removes the match after the removal delay. The match stays
// fully usable until then. A second call while one is pending is ignored.
func (that *Registry) ScheduleRemoval(id string) bool {
	log := that.logger.With("method", "ScheduleRemoval", "gameID", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		log.Warn("game not found")
		return false
	}

	if _, pending := that.removals[id]; pending {
		return false
	}

	if !that.scheduler.After(that.removalDelay, func() { that.RemoveGame(id) }) {
		log.Warn("scheduler stopped, removal dropped")
		return false
	}

	that.removals[id] = struct{}{}
	log.Info("game removal scheduled", "delay", that.removalDelay)

	return true
}

// RemoveGame drops the match now. Connected players are detached, the rest are deleted.
func (that *Registry) RemoveGame(id string) {
	log := that.logger.With("method", "RemoveGame", "gameID", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.removals, id)

	game, ok := that.games[id]
	if !ok {
		return
	}
	delete(that.games, id)

	for _, playerID := range game.Players.IDs() {
		player, ok := that.players[playerID]
		if !ok || player.GameID != id {
			continue
		}

		if player.Connected {
			detached := player.Clone()
			detached.GameID = ""
			that.players[playerID] = detached
			continue
		}

		delete(that.players, playerID)
	}

	log.Info("game removed")
}

func (that *Registry) GameCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}
