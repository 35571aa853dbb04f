package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Send buffer size
	sendBufferSize = 256
)

var (
	ErrClientClosed   = errors.New("client is closed")
	ErrSendBufferFull = errors.New("client send buffer is full")
)

// Client is one relay connection, bound to exactly one room for its
// lifetime. Each client runs its own read/write pump goroutine pair.
type Client struct {
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte

	roomCode string
	roomID   string
	userID   string

	mu     sync.RWMutex
	closed bool

	logger *zap.Logger
}

// NewClient creates a new relay client
func NewClient(registry *Registry, conn *websocket.Conn, roomCode, roomID, userID string, logger *zap.Logger) *Client {
	return &Client{
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		roomCode: roomCode,
		roomID:   roomID,
		userID:   userID,
		logger:   logger,
	}
}

// UserID returns the authenticated user behind this connection
func (c *Client) UserID() string {
	return c.userID
}

// RoomCode returns the room this connection is bound to
func (c *Client) RoomCode() string {
	return c.roomCode
}

// Send queues data for delivery. It never blocks: a full buffer means the
// client has stopped draining and the returned error gets it evicted.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close marks the client closed and releases its write pump. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads inbound frames and relays each one to the other players in
// the room, tagged with this client's user id. Unregistration runs on every
// exit path.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Unregister(c.roomCode, c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error",
					zap.String("user_id", c.userID),
					zap.String("code", c.roomCode),
					zap.Error(err),
				)
			}
			break
		}

		// Malformed frames are dropped without killing the connection
		if !json.Valid(data) {
			c.logger.Warn("Dropping non-JSON relay frame",
				zap.String("user_id", c.userID),
				zap.String("code", c.roomCode),
			)
			continue
		}

		// The payload stays opaque; only the sender tag is added.
		c.registry.BroadcastExcept(c.roomCode, NewPeerMessage(c.userID, data), c)
	}
}

// WritePump drains the send buffer to the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
