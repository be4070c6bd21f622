package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks connected sessions and the match rooms they joined.
// Emits to unknown sessions or empty rooms are dropped.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
	reserved map[string]struct{}
	rooms    map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With("component", "hub"),
		sessions: make(map[string]*session),
		reserved: make(map[string]struct{}),
		rooms:    make(map[string]map[string]struct{}),
	}
}

// reserve holds the session id for a connection still being upgraded.
// It reports false when the id is connected or already held.
func (that *Hub) reserve(sessionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, taken := that.sessions[sessionID]; taken {
		return false
	}

	if _, held := that.reserved[sessionID]; held {
		return false
	}

	that.reserved[sessionID] = struct{}{}

	return true
}

func (that *Hub) release(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.reserved, sessionID)
}

// register binds the session id to the connection and consumes its reservation.
// It reports false when the id is taken.
func (that *Hub) register(s *session) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.reserved, s.id)

	if _, taken := that.sessions[s.id]; taken {
		return false
	}

	that.sessions[s.id] = s

	return true
}

func (that *Hub) unregister(s *session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.sessions[s.id]; !ok || current != s {
		return
	}

	delete(that.sessions, s.id)

	for roomID, members := range that.rooms {
		delete(members, s.id)
		if len(members) == 0 {
			delete(that.rooms, roomID)
		}
	}

	s.close()
}

func (that *Hub) isConnected(sessionID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.sessions[sessionID]

	return ok
}

func (that *Hub) JoinRoom(sessionID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[sessionID]; !ok {
		return
	}

	members, ok := that.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[roomID] = members
	}
	members[sessionID] = struct{}{}
}

func (that *Hub) LeaveRoom(sessionID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(members, sessionID)
	if len(members) == 0 {
		delete(that.rooms, roomID)
	}
}

func (that *Hub) RoomSize(roomID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[roomID])
}

func (that *Hub) EmitToRoom(roomID, event string, payload any) {
	that.mu.RLock()
	members := make([]*session, 0, len(that.rooms[roomID]))
	for sessionID := range that.rooms[roomID] {
		members = append(members, that.sessions[sessionID])
	}
	that.mu.RUnlock()

	msg := Message{Event: event, Payload: payload}
	for _, s := range members {
		s.send(msg)
	}
}

func (that *Hub) EmitToSession(sessionID, event string, payload any) {
	that.mu.RLock()
	s, ok := that.sessions[sessionID]
	that.mu.RUnlock()

	if !ok {
		that.logger.Debug("session not found", "sessionID", sessionID, "event", event)
		return
	}

	s.send(Message{Event: event, Payload: payload})
}
