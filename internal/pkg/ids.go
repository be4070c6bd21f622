package pkg

import (
	"github.com/google/uuid"
)

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateGameID - generates a unique identifier for a match record.
func GenerateGameID() string {
	return uuid.NewString()
}
