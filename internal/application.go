package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/xong-backend/internal/config"
	"github.com/rocketscienceinc/xong-backend/internal/physics"
	"github.com/rocketscienceinc/xong-backend/internal/repository"
	"github.com/rocketscienceinc/xong-backend/internal/repository/storage"
	"github.com/rocketscienceinc/xong-backend/internal/scheduler"
	"github.com/rocketscienceinc/xong-backend/internal/usecase"
	"github.com/rocketscienceinc/xong-backend/transport/rest"
	"github.com/rocketscienceinc/xong-backend/transport/websocket"
)

var (
	ErrAddrNotFound  = errors.New("redis address string is empty")
	ErrUnknownDriver = errors.New("unknown persistence driver")
)

type gameStore interface {
	Create(ctx context.Context, players [2]string) (string, error)
}

type resultRecorder interface {
	SaveResult(ctx context.Context, id, winner string) error
}

type persistence struct {
	store    gameStore
	recorder resultRecorder
	close    func() error
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	games, err := openPersistence(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = games.close(); err != nil {
			log.Error("could not close persistence", "driver", conf.Persistence.Driver, "error", err)
		}
	}()

	field := fieldFromConfig(conf.Game.Field)

	sched := scheduler.New()
	registry := repository.NewRegistry(logger, sched, conf.Registry.RemovalDelay)
	hub := websocket.NewHub(logger)

	gameManager := usecase.NewGameManager(logger, registry, sched, hub, games.recorder, usecase.Settings{
		Field:          field,
		Tick:           conf.Game.Tick,
		BroadcastEvery: conf.Game.BroadcastEvery,
		Countdown:      conf.Game.Countdown,
		PickTimeout:    conf.Game.PickTimeout,
	})

	matchmaker := usecase.NewMatchmaker(logger, games.store, registry, hub, sched, field, usecase.QueueSettings{
		Interval:      conf.Matchmaking.Interval,
		CreatedDelay:  conf.Matchmaking.CreatedDelay,
		CreateTimeout: conf.Matchmaking.CreateTimeout,
	})

	defer func() {
		sched.Stop()
		gameManager.Shutdown()
		log.Info("game loops stopped")
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewHandlers(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, gameManager, matchmaker)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// openPersistence - connects the match record collaborator chosen by persistence.driver.
func openPersistence(ctx context.Context, conf *config.Config) (*persistence, error) {
	switch conf.Persistence.Driver {
	case config.DriverHTTP:
		return &persistence{
			store: repository.NewHTTPGameRepository(conf.Persistence.BaseURL, conf.Persistence.HTTPTimeout),
			close: func() error { return nil },
		}, nil

	case config.DriverRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		gameRepo := repository.NewGameRepository(redisStorage.Connection)

		return &persistence{store: gameRepo, recorder: gameRepo, close: redisStorage.Close}, nil

	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		gameRepo := repository.NewSQLiteGameRepository(sqliteStorage.Connection)

		return &persistence{store: gameRepo, recorder: gameRepo, close: sqliteStorage.Close}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, conf.Persistence.Driver)
	}
}

func fieldFromConfig(conf config.Field) physics.Field {
	return physics.Field{
		Width:        conf.Width,
		Height:       conf.Height,
		Margin:       conf.Margin,
		PaddleWidth:  conf.PaddleWidth,
		PaddleHeight: conf.PaddleHeight,
		PaddleSpeed:  conf.PaddleSpeed,
		BallSize:     conf.BallSize,
		BallSpeed:    conf.BallSpeed,
		BallSpeedMod: conf.BallSpeedMod,
		CellSize:     conf.CellSize,
		HitBand:      conf.HitBand,
	}
}
