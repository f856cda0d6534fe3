package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Outbound frames buffered per client before new ones are dropped
	sendBufferSize = 256
)

// Client represents a single websocket connection
type Client struct {
	ID             string
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	limiter        *rate.Limiter
	maxMessageSize int64
}

// NewClient creates a new Client with a fresh connection id
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:             uuid.New().String(),
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, sendBufferSize),
		limiter:        rate.NewLimiter(hub.eventLimit, hub.eventBurst),
		maxMessageSize: domain.MaxMessageSize,
	}
}

// SetMaxMessageSize overrides the inbound frame size limit
func (c *Client) SetMaxMessageSize(n int) {
	if n > 0 {
		c.maxMessageSize = int64(n)
	}
}

// ReadPump pumps messages from the websocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("connection closed unexpectedly", zap.String("conn", c.ID), zap.Error(err))
			}
			break
		}

		if !c.limiter.Allow() {
			c.hub.log.Debug("inbound rate limit exceeded, dropping frame", zap.String("conn", c.ID))
			continue
		}

		var in domain.Inbound
		if err := json.Unmarshal(message, &in); err != nil {
			c.hub.log.Debug("malformed frame", zap.String("conn", c.ID), zap.Error(err))
			continue
		}

		c.hub.Dispatch(c.ID, in)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// Each queued message is written as its own frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// Send adds a message to the client's send queue. Returns false if the buffer is full.
func (c *Client) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
