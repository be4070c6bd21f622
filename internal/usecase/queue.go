package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
)

type gameStore interface {
	Create(ctx context.Context, players [2]string) (string, error)
}

type gameRegistrar interface {
	CreateGame(game *entity.Game, seatOne, seatTwo *entity.Player) error
}

type sessionNotifier interface {
	EmitToSession(sessionID, event string, payload any)
}

type QueueSettings struct {
	Interval      time.Duration
	CreatedDelay  time.Duration
	CreateTimeout time.Duration
}

type QueueEntry struct {
	UserID    string
	SessionID string
}

// Matchmaker pairs queued users FIFO on a fixed interval. At most one drain runs at a time.
// Pairs whose record creation fails are not queued again.
type Matchmaker struct {
	logger    *slog.Logger
	store     gameStore
	registry  gameRegistrar
	notifier  sessionNotifier
	scheduler taskScheduler
	field     physics.Field
	settings  QueueSettings

	mu         sync.Mutex
	queue      []QueueEntry
	processing bool
	armed      bool
}

func NewMatchmaker(
	logger *slog.Logger,
	store gameStore,
	registry gameRegistrar,
	notifier sessionNotifier,
	scheduler taskScheduler,
	field physics.Field,
	settings QueueSettings,
) *Matchmaker {
	return &Matchmaker{
		logger:    logger.With("component", "matchmaker"),
		store:     store,
		registry:  registry,
		notifier:  notifier,
		scheduler: scheduler,
		field:     field,
		settings:  settings,
	}
}

// Enqueue adds the user to the queue. A user already queued only has its session replaced.
func (that *Matchmaker) Enqueue(userID, sessionID string) {
	log := that.logger.With("method", "Enqueue", "userID", userID)

	that.mu.Lock()
	defer that.mu.Unlock()

	queued := false
	for i := range that.queue {
		if that.queue[i].UserID == userID {
			that.queue[i].SessionID = sessionID
			queued = true
			break
		}
	}

	if !queued {
		that.queue = append(that.queue, QueueEntry{UserID: userID, SessionID: sessionID})
	}

	log.Info("user queued", "queueLength", len(that.queue))

	if !that.processing && !that.armed {
		that.arm()
	}
}

// Remove drops every entry of a session that has not been paired yet.
func (that *Matchmaker) Remove(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	kept := that.queue[:0]
	for _, entry := range that.queue {
		if entry.SessionID != sessionID {
			kept = append(kept, entry)
		}
	}
	that.queue = kept
}

func (that *Matchmaker) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.queue)
}

// arm must be called with mu held.
func (that *Matchmaker) arm() {
	that.armed = that.scheduler.After(that.settings.Interval, that.drain)
}

func (that *Matchmaker) drain() {
	log := that.logger.With("method", "drain")

	that.mu.Lock()
	that.armed = false

	if len(that.queue) < 2 {
		that.mu.Unlock()
		return
	}

	that.processing = true

	var pairs [][2]QueueEntry
	for len(that.queue) >= 2 {
		pairs = append(pairs, [2]QueueEntry{that.queue[0], that.queue[1]})
		that.queue = that.queue[2:]
	}
	that.mu.Unlock()

	log.Info("processing queue", "pairs", len(pairs))

	var wg sync.WaitGroup
	for _, pair := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := that.createMatch(pair); err != nil {
				log.Error("failed to create game", "userOne", pair[0].UserID, "userTwo", pair[1].UserID, "error", err)
			}
		}()
	}
	wg.Wait()

	that.mu.Lock()
	that.processing = false
	that.arm()
	that.mu.Unlock()

	log.Info("done processing queue")
}

func (that *Matchmaker) createMatch(pair [2]QueueEntry) error {
	seatOne, seatTwo := pair[0], pair[1]

	that.notifyBoth(pair, entity.EventGameReady, nil)

	ctx, cancel := context.WithTimeout(context.Background(), that.settings.CreateTimeout)
	defer cancel()

	gameID, err := that.store.Create(ctx, [2]string{seatOne.UserID, seatTwo.UserID})
	if err != nil {
		that.notifyBoth(pair, entity.EventGameCreateFail, nil)
		return fmt.Errorf("failed to create game record: %w", err)
	}

	game := entity.NewGame(gameID, seatOne.UserID, seatTwo.UserID)
	playerOne := entity.NewPlayer(seatOne.UserID, gameID, entity.MarkX, that.field.PaddleStart(1))
	playerTwo := entity.NewPlayer(seatTwo.UserID, gameID, entity.MarkO, that.field.PaddleStart(2))

	if err = that.registry.CreateGame(game, playerOne, playerTwo); err != nil {
		that.notifyBoth(pair, entity.EventGameCreateFail, nil)
		return fmt.Errorf("failed to register game: %w", err)
	}

	that.scheduler.After(that.settings.CreatedDelay, func() {
		that.notifyBoth(pair, entity.EventGameCreated, entity.GameCreatedPayload{GameID: gameID})
	})

	that.logger.Info("game created", "gameID", gameID, "userOne", seatOne.UserID, "userTwo", seatTwo.UserID)

	return nil
}

func (that *Matchmaker) notifyBoth(pair [2]QueueEntry, event string, payload any) {
	for _, entry := range pair {
		that.notifier.EmitToSession(entry.SessionID, event, payload)
	}
}
