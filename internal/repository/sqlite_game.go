package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/pkg"
)

type sqliteGame struct {
	conn *sql.DB
}

func NewSQLiteGameRepository(conn *sql.DB) GameRepository {
	return &sqliteGame{
		conn: conn,
	}
}

func (that *sqliteGame) Create(ctx context.Context, players [2]string) (string, error) {
	query := `INSERT INTO games (id, player_one, player_two, created_at) VALUES (?, ?, ?, ?)`

	id := pkg.GenerateGameID()

	_, err := that.conn.ExecContext(ctx, query, id, players[0], players[1], time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert game: %w", err)
	}

	return id, nil
}

func (that *sqliteGame) SaveResult(ctx context.Context, id, winner string) error {
	query := `UPDATE games SET winner = ? WHERE id = ?`

	result, err := that.conn.ExecContext(ctx, query, winner, id)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return ErrGameNotFound
	}

	return nil
}

func (that *sqliteGame) GetByID(ctx context.Context, id string) (*entity.GameRecord, error) {
	query := `SELECT id, player_one, player_two, winner, created_at FROM games WHERE id = ?`

	var record entity.GameRecord

	err := that.conn.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Players[0],
		&record.Players[1],
		&record.Winner,
		&record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.GameRecord{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.GameRecord{}, fmt.Errorf("failed to get game: %w", err)
	}

	return &record, nil
}
