package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Buffer sizes. The hub channels are buffered so publishers hand
	// messages off without blocking; a subscriber whose send buffer fills
	// up is dropped rather than waited on.
	sendBufferSize      = 64
	broadcastBufferSize = 256
	controlBufferSize   = 64
	inboundBufferSize   = 64
)

// Hub keeps the registry of connected sessions and fans broadcast messages
// out to all of them. All session bookkeeping happens on the Run goroutine,
// so the maps need no locking.
type Hub struct {
	// Registered sessions, keyed by session ID.
	clients map[string]*Client
	// Outbound messages to fan out to every session.
	broadcast chan []byte
	// Register requests from new sessions.
	register chan *Client
	// Unregister requests from sessions.
	unregister chan *Client
	// InboundMessages carries frames read from clients; module handlers
	// (the lobby announce handler) consume it.
	InboundMessages chan *ClientMessage
}

// Client represents one connected session. The websocket conn is owned by
// the read/write pumps; the hub only ever touches the Send channel.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages. Producers must go through
	// TrySend, which guards against the channel being closed underneath
	// them; closeSend is the only place the channel is closed.
	Send chan []byte
	// Opaque session identifier.
	ID string

	mu     sync.Mutex
	closed bool
}

// TrySend queues data for delivery to the session. Returns false without
// blocking when the session is closed or its buffer is full.
func (c *Client) TrySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend marks the session closed and closes its send channel exactly
// once. Concurrent TrySend callers observe the flag, never a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ClientMessage wraps an inbound frame together with the session it came from.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		broadcast:       make(chan []byte, broadcastBufferSize),
		register:        make(chan *Client, controlBufferSize),
		unregister:      make(chan *Client, controlBufferSize),
		InboundMessages: make(chan *ClientMessage, inboundBufferSize),
	}
}

// NewClient builds a session around an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
		ID:   uuid.NewString(),
	}
}

// Run drains the hub channels until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("WebSocket hub shutting down")
			for id, client := range h.clients {
				client.closeSend()
				delete(h.clients, id)
			}
			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			// Admit queued subscribers first: a session registered before
			// this snapshot was published must also receive it.
			for drained := false; !drained; {
				select {
				case client := <-h.register:
					h.add(client)
				default:
					drained = true
				}
			}
			for id, client := range h.clients {
				if !client.TrySend(message) {
					// Subscriber is not keeping up; drop it so the others
					// still get the message.
					client.closeSend()
					delete(h.clients, id)
					log.Warn("Failed to send message to session, unregistering",
						zap.String("sessionID", client.ID),
					)
				}
			}
		}
	}
}

func (h *Hub) add(client *Client) {
	// A session whose send channel is already closed (late re-register
	// after a disconnect) must never get back into the fan-out set.
	if client.isClosed() {
		log.Warn("Refusing to register closed session",
			zap.String("sessionID", client.ID),
		)
		return
	}
	if _, ok := h.clients[client.ID]; ok {
		return
	}
	h.clients[client.ID] = client
	log.Info("Session registered",
		zap.String("sessionID", client.ID),
		zap.Int("total_sessions", len(h.clients)),
	)
}

func (h *Hub) remove(client *Client) {
	if current, ok := h.clients[client.ID]; ok && current == client {
		delete(h.clients, client.ID)
		client.closeSend()
		log.Info("Session unregistered",
			zap.String("sessionID", client.ID),
			zap.Int("total_sessions", len(h.clients)),
		)
	}
}

// RegisterClient subscribes a session to broadcasts.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("Register channel is full, session registration failed",
			zap.String("sessionID", client.ID),
		)
	}
}

// UnregisterClient removes a session from the hub. Safe to call more than
// once per session; only the first call closes the send channel.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister channel is full, session unregistration failed",
			zap.String("sessionID", client.ID),
		)
	}
}

// Broadcast queues data for delivery to every registered session. The
// hand-off is bounded and non-blocking so callers holding the registry lock
// never stall on subscribers; the buffered channel preserves publish order.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Error("Broadcast channel is full, message dropped")
	}
}

// ReadPump reads frames from the websocket connection and forwards them to
// the hub's inbound channel. Runs on the connection goroutine; unregisters
// the session unconditionally on exit.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Info("ReadPump stopped for session",
			zap.String("sessionID", c.ID),
			zap.String("remote_addr", c.Conn.RemoteAddr().String()),
		)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("sessionID", c.ID),
					zap.Error(err),
				)
			} else {
				log.Info("WebSocket connection closed by peer",
					zap.String("sessionID", c.ID),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Hub inbound channel is full, dropping message",
				zap.String("sessionID", c.ID),
			)
		}
	}
}

// WritePump forwards messages from the session's Send channel to the
// websocket connection and keeps the connection alive with pings. There is
// at most one writer per connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Info("WritePump stopped for session",
			zap.String("sessionID", c.ID),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			err := c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			if err != nil {
				log.Error("Failed to send close control message",
					zap.String("sessionID", c.ID),
					zap.Error(err),
				)
			}
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("Failed to write message to session",
					zap.String("sessionID", c.ID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error("Failed to write ping message to session",
					zap.String("sessionID", c.ID),
					zap.Error(err),
				)
				return
			}
		}
	}
}
