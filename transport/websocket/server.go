package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xong-backend/internal/entity"
	"github.com/rocketscienceinc/xong-backend/internal/pkg"
)

const sessionCookie = "user_session"

type gameManager interface {
	JoinMatch(ctx context.Context, sessionID, gameID, userID string) error
	LeaveMatch(ctx context.Context, sessionID, gameID, userID string) error
	SetPlayState(ctx context.Context, gameID, userID, playState string) error
	KeyDown(ctx context.Context, gameID, userID, direction string) error
	KeyUp(ctx context.Context, gameID, userID, direction string, y float64) error
	SelectCell(ctx context.Context, gameID, userID, cellID string) error
	HitCell(ctx context.Context, gameID, userID, cellID string) error
	Disconnect(ctx context.Context, sessionID string)
}

type matchmaker interface {
	Enqueue(userID, sessionID string)
	Remove(sessionID string)
}

type handler func(ctx context.Context, s *session, payload []byte) error

type Server struct {
	logger     *slog.Logger
	hub        *Hub
	manager    gameManager
	matchmaker matchmaker
	upgrader   websocket.Upgrader

	handlers map[string]handler
}

func New(logger *slog.Logger, hub *Hub, manager gameManager, matchmaker matchmaker) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		hub:        hub,
		manager:    manager,
		matchmaker: matchmaker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},

		handlers: make(map[string]handler),
	}

	server.handlers[entity.EventUserJoinedGame] = server.handleJoinGame
	server.handlers[entity.EventUserLeftGame] = server.handleLeaveGame
	server.handlers[entity.EventGamePlayStateUpdate] = server.handlePlayState
	server.handlers[entity.EventPlayerKeyDown] = server.handleKeyDown
	server.handlers[entity.EventPlayerKeyUp] = server.handleKeyUp
	server.handlers[entity.EventPlayerSelectCell] = server.handleSelectCell
	server.handlers[entity.EventPlayerHitCell] = server.handleHitCell
	server.handlers[entity.EventQueue] = server.handleQueue

	return server
}

// Handler - returns the mux serving the websocket endpoint on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	frameCodec, err := codecByName(req.URL.Query().Get("codec"))
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	sessionID, header := that.sessionID(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		that.hub.release(sessionID)
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	s := newSession(sessionID, conn, frameCodec, that.logger)
	if !that.hub.register(s) {
		log.Error("session id taken after reservation", "sessionID", sessionID)
		_ = conn.Close()
		return
	}

	log.Info("WebSocket connection established", "sessionID", s.id, "codec", frameCodec.Name())

	go s.writePump()
	s.readPump(func(data []byte) {
		that.handleMessage(ctx, s, data)
	})

	that.hub.unregister(s)
	that.manager.Disconnect(ctx, s.id)
	that.matchmaker.Remove(s.id)

	log.Info("WebSocket connection closed", "sessionID", s.id)
}

// sessionID - reserves the user_session cookie unless that session is already
// connected, otherwise a fresh id that the returned header sets as the cookie.
func (that *Server) sessionID(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionID")

	cookie, err := req.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" && that.hub.reserve(cookie.Value) {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	id := pkg.GenerateNewSessionID()
	for !that.hub.reserve(id) {
		id = pkg.GenerateNewSessionID()
	}

	cookie = &http.Cookie{
		Name:    sessionCookie,
		Value:   id,
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	log.Debug("new session cookie created", "cookie", cookie.Value)

	return cookie.Value, header
}

// handleMessage - dispatches one frame. Malformed or rejected messages are logged and dropped.
func (that *Server) handleMessage(ctx context.Context, s *session, data []byte) {
	log := that.logger.With("method", "handleMessage", "sessionID", s.id)

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic while handling message", "panic", r)
		}
	}()

	event, payload, err := s.codec.DecodeEnvelope(data)
	if err != nil {
		log.Warn("failed to decode message", "error", err)
		return
	}

	handle, ok := that.handlers[event]
	if !ok {
		log.Warn("unknown event", "event", event)
		return
	}

	if err = handle(ctx, s, payload); err != nil {
		log.Info("message dropped", "event", event, "reason", err)
	}
}

func sameOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == req.Host
}
