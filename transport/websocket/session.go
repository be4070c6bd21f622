package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
)

// session is one websocket connection. Messages to a slow client are dropped once
// its send buffer is full.
type session struct {
	id     string
	conn   *websocket.Conn
	codec  codec
	logger *slog.Logger

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func newSession(id string, conn *websocket.Conn, codec codec, logger *slog.Logger) *session {
	return &session{
		id:     id,
		conn:   conn,
		codec:  codec,
		logger: logger.With("sessionID", id, "codec", codec.Name()),
		out:    make(chan []byte, sendBufSize),
	}
}

func (that *session) send(msg Message) {
	data, err := that.codec.Encode(msg)
	if err != nil {
		that.logger.Error("failed to encode message", "event", msg.Event, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	select {
	case that.out <- data:
	default:
		that.logger.Warn("send buffer full, message dropped", "event", msg.Event)
	}
}

func (that *session) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.out)
	}
}

// readPump delivers every frame to handle until the connection fails.
func (that *session) readPump(handle func(data []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		handle(data)
	}
}

func (that *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.out:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(that.codec.FrameType(), data); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
