package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
	"github.com/rocketscienceinc/xong-backend/internal/repository"
	"github.com/rocketscienceinc/xong-backend/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type queueFixture struct {
	matchmaker  *Matchmaker
	store       *mockGameStore
	registry    *repository.Registry
	broadcaster *recordingBroadcaster
}

func newQueueFixture(t *testing.T) queueFixture {
	t.Helper()

	sched := scheduler.New()
	t.Cleanup(sched.Stop)

	store := &mockGameStore{}
	registry := repository.NewRegistry(discardLogger(), sched, time.Minute)
	broadcaster := newRecordingBroadcaster()

	matchmaker := NewMatchmaker(discardLogger(), store, registry, broadcaster, sched, physics.DefaultField(), QueueSettings{
		Interval:      10 * time.Millisecond,
		CreatedDelay:  10 * time.Millisecond,
		CreateTimeout: time.Second,
	})

	return queueFixture{
		matchmaker:  matchmaker,
		store:       store,
		registry:    registry,
		broadcaster: broadcaster,
	}
}

func TestMatchmaker_Pairing(t *testing.T) {
	t.Run("Two queued users get a registered match", func(t *testing.T) {
		// Given: a store that hands out record g1
		fx := newQueueFixture(t)
		fx.store.On("Create", mock.Anything, [2]string{"userA", "userB"}).Return("g1", nil).Once()

		// When: two users queue
		fx.matchmaker.Enqueue("userA", "s1")
		fx.matchmaker.Enqueue("userB", "s2")

		// Then: both are told the match exists
		require.Eventually(t, func() bool {
			return len(fx.broadcaster.Events(entity.EventGameCreated)) == 2
		}, waitFor, 5*time.Millisecond)

		ready := fx.broadcaster.Events(entity.EventGameReady)
		require.Len(t, ready, 2)
		assert.ElementsMatch(t, []string{"s1", "s2"}, []string{ready[0].Session, ready[1].Session})

		created := fx.broadcaster.Events(entity.EventGameCreated)
		assert.Equal(t, entity.GameCreatedPayload{GameID: "g1"}, created[0].Payload)

		// And: the seats follow queue order
		game, err := fx.registry.GetGame("g1")
		require.NoError(t, err)
		assert.Equal(t, entity.Seats{One: "userA", Two: "userB"}, game.Players)
		assert.Equal(t, entity.PlayStateWaiting, game.PlayState)

		seatOne, err := fx.registry.GetPlayer("userA")
		require.NoError(t, err)
		assert.Equal(t, entity.MarkX, seatOne.Mark)
		assert.Equal(t, 20.0, seatOne.Position.X)

		seatTwo, err := fx.registry.GetPlayer("userB")
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, seatTwo.Mark)
		assert.Equal(t, 768.0, seatTwo.Position.X)

		assert.Zero(t, fx.matchmaker.Len())
		fx.store.AssertExpectations(t)
	})

	t.Run("Store failure notifies the pair and does not queue them again", func(t *testing.T) {
		fx := newQueueFixture(t)
		fx.store.On("Create", mock.Anything, [2]string{"userA", "userB"}).Return("", errors.New("store down")).Once()

		fx.matchmaker.Enqueue("userA", "s1")
		fx.matchmaker.Enqueue("userB", "s2")

		require.Eventually(t, func() bool {
			return len(fx.broadcaster.Events(entity.EventGameCreateFail)) == 2
		}, waitFor, 5*time.Millisecond)

		time.Sleep(30 * time.Millisecond)

		assert.Zero(t, fx.matchmaker.Len())
		assert.Empty(t, fx.broadcaster.Events(entity.EventGameCreated))
		assert.Zero(t, fx.registry.GameCount())
		fx.store.AssertExpectations(t)
	})

	t.Run("Odd user out stays queued", func(t *testing.T) {
		fx := newQueueFixture(t)
		fx.store.On("Create", mock.Anything, [2]string{"userA", "userB"}).Return("g1", nil).Once()

		fx.matchmaker.Enqueue("userA", "s1")
		fx.matchmaker.Enqueue("userB", "s2")
		fx.matchmaker.Enqueue("userC", "s3")

		require.Eventually(t, func() bool {
			return len(fx.broadcaster.Events(entity.EventGameCreated)) == 2
		}, waitFor, 5*time.Millisecond)

		assert.Equal(t, 1, fx.matchmaker.Len())
		fx.store.AssertExpectations(t)
	})
}

func TestMatchmaker_Queue(t *testing.T) {
	t.Run("Removed session is never paired", func(t *testing.T) {
		fx := newQueueFixture(t)

		fx.matchmaker.Enqueue("userA", "s1")
		fx.matchmaker.Enqueue("userB", "s2")
		fx.matchmaker.Remove("s2")

		time.Sleep(40 * time.Millisecond)

		assert.Equal(t, 1, fx.matchmaker.Len())
		assert.Empty(t, fx.broadcaster.Events(entity.EventGameReady))
		fx.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Queueing twice replaces the session", func(t *testing.T) {
		fx := newQueueFixture(t)
		fx.store.On("Create", mock.Anything, [2]string{"userA", "userB"}).Return("g1", nil).Once()

		fx.matchmaker.Enqueue("userA", "s1")
		fx.matchmaker.Enqueue("userA", "s1-new")
		assert.Equal(t, 1, fx.matchmaker.Len())

		fx.matchmaker.Enqueue("userB", "s2")

		require.Eventually(t, func() bool {
			return len(fx.broadcaster.Events(entity.EventGameCreated)) == 2
		}, waitFor, 5*time.Millisecond)

		sessions := make([]string, 0, 2)
		for _, e := range fx.broadcaster.Events(entity.EventGameReady) {
			sessions = append(sessions, e.Session)
		}
		assert.ElementsMatch(t, []string{"s1-new", "s2"}, sessions)
	})
}
