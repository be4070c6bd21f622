package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrEmptyGameID = errors.New("game service returned an empty id")

// HTTPGameRepository creates match records on the external game service.
type HTTPGameRepository struct {
	baseURL string
	client  *http.Client
}

type createGameResponse struct {
	ID string `json:"_id"`
}

func NewHTTPGameRepository(baseURL string, timeout time.Duration) *HTTPGameRepository {
	return &HTTPGameRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Create posts the pair as a JSON array and returns the "_id" of the new record.
func (that *HTTPGameRepository) Create(ctx context.Context, players [2]string) (string, error) {
	body, err := json.Marshal(players)
	if err != nil {
		return "", fmt.Errorf("failed to marshal players: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+"/api/games", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("failed to create game: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var created createGameResponse
	if err = json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if created.ID == "" {
		return "", ErrEmptyGameID
	}

	return created.ID, nil
}
