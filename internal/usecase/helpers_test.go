package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
	"github.com/rocketscienceinc/xong-backend/internal/repository"
	"github.com/rocketscienceinc/xong-backend/internal/scheduler"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	Room    string
	Session string
	Event   string
	Payload any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []emitted
	rooms  map[string]map[string]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{rooms: make(map[string]map[string]bool)}
}

func (that *recordingBroadcaster) JoinRoom(sessionID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[roomID] == nil {
		that.rooms[roomID] = make(map[string]bool)
	}
	that.rooms[roomID][sessionID] = true
}

func (that *recordingBroadcaster) LeaveRoom(sessionID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms[roomID], sessionID)
}

func (that *recordingBroadcaster) EmitToRoom(roomID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, emitted{Room: roomID, Event: event, Payload: payload})
}

func (that *recordingBroadcaster) EmitToSession(sessionID, event string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, emitted{Session: sessionID, Event: event, Payload: payload})
}

func (that *recordingBroadcaster) Events(event string) []emitted {
	that.mu.Lock()
	defer that.mu.Unlock()

	var found []emitted
	for _, e := range that.events {
		if e.Event == event {
			found = append(found, e)
		}
	}
	return found
}

func (that *recordingBroadcaster) InRoom(sessionID, roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rooms[roomID][sessionID]
}

type mockGameStore struct {
	mock.Mock
}

func (that *mockGameStore) Create(ctx context.Context, players [2]string) (string, error) {
	args := that.Called(ctx, players)
	return args.String(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (that *mockRecorder) SaveResult(ctx context.Context, id, winner string) error {
	args := that.Called(ctx, id, winner)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSettings() Settings {
	return Settings{
		Field:          physics.DefaultField(),
		Tick:           5 * time.Millisecond,
		BroadcastEvery: 1,
		Countdown:      20 * time.Millisecond,
	}
}

type managerFixture struct {
	manager     *GameManager
	registry    *repository.Registry
	broadcaster *recordingBroadcaster
}

func newManagerFixture(t *testing.T, settings Settings, recorder resultRecorder) managerFixture {
	t.Helper()

	sched := scheduler.New()
	registry := repository.NewRegistry(discardLogger(), sched, 30*time.Millisecond)
	broadcaster := newRecordingBroadcaster()

	manager := NewGameManager(discardLogger(), registry, sched, broadcaster, recorder, settings)
	t.Cleanup(func() {
		sched.Stop()
		manager.Shutdown()
	})

	return managerFixture{
		manager:     manager,
		registry:    registry,
		broadcaster: broadcaster,
	}
}

// seedMatch registers g1 with userA in seat 1 and userB in seat 2.
func (that managerFixture) seedMatch(t *testing.T) {
	t.Helper()

	field := physics.DefaultField()
	game := entity.NewGame("g1", "userA", "userB")
	seatOne := entity.NewPlayer("userA", "g1", entity.MarkX, field.PaddleStart(1))
	seatTwo := entity.NewPlayer("userB", "g1", entity.MarkO, field.PaddleStart(2))

	require.NoError(t, that.registry.CreateGame(game, seatOne, seatTwo))
}

// seedPlaying registers g1 already in play without starting its physics loop.
func (that managerFixture) seedPlaying(t *testing.T) {
	t.Helper()

	that.seedMatch(t)
	_, err := that.registry.UpdateGame("g1", func(game *entity.Game) error {
		game.PlayState = entity.PlayStatePlaying
		game.Round = 1
		return nil
	})
	require.NoError(t, err)
}

func (that managerFixture) connect(t *testing.T, userID string) {
	t.Helper()

	_, err := that.registry.UpdatePlayer(userID, func(player *entity.Player) error {
		player.Connected = true
		return nil
	})
	require.NoError(t, err)
}
