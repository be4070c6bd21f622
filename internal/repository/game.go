package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/xong-backend/internal/entity"
)

const gameSeqKey = "game:seq"

// GameRepository keeps durable match records and hands out their ids.
type GameRepository interface {
	Create(ctx context.Context, players [2]string) (string, error)
	SaveResult(ctx context.Context, id, winner string) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) Create(ctx context.Context, players [2]string) (string, error) {
	seq, err := that.client.Incr(ctx, gameSeqKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate game id: %w", err)
	}

	record := &entity.GameRecord{
		ID:        strconv.FormatInt(seq, 10),
		Players:   players,
		CreatedAt: time.Now().UTC(),
	}

	if err = that.save(ctx, record); err != nil {
		return "", err
	}

	return record.ID, nil
}

func (that *dbGame) SaveResult(ctx context.Context, id, winner string) error {
	record, err := that.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	record.Winner = winner

	return that.save(ctx, record)
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.GameRecord, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.GameRecord{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.GameRecord{}, fmt.Errorf("%w by id", err)
	}

	var record entity.GameRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return &entity.GameRecord{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &record, nil
}

func (that *dbGame) save(ctx context.Context, record *entity.GameRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + record.ID
	if err = that.client.Set(ctx, gameKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}
