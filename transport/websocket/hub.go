package websocket

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SilberGecko6917/HackTheFleet/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound queue per client. A client that can't drain this is dropped.
	sendQueueSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Upgrade switches an HTTP request to the WebSocket protocol.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

// FrameHandler consumes inbound frames and connection teardown events.
type FrameHandler interface {
	HandleFrame(playerID string, raw []byte)
	Disconnect(playerID string)
}

// Client is one player's WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Hub maintains the set of active clients, one per player ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *slog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// NewClient registers a connection under playerID. The pumps are not running
// yet; call Start once the player is fully wired in. Any previous connection
// under the same ID is closed.
func (h *Hub) NewClient(playerID string, conn *websocket.Conn) *Client {
	client := &Client{
		hub:      h,
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	prev := h.clients[playerID]
	h.clients[playerID] = client
	total := len(h.clients)
	h.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	h.logger.Debug("client registered", "player_id", playerID, "total_clients", total)
	return client
}

// Start launches the read and write pumps. Inbound frames go to handler;
// when the connection dies, handler.Disconnect fires exactly once.
func (c *Client) Start(handler FrameHandler) {
	go c.writePump()
	go c.readPump(handler)
}

// Close shuts the outbound queue, which makes the write pump send a close
// frame and tear down the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

// enqueue hands data to the write pump. Returns false if the client is
// closed or its queue is full.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Send encodes msg and queues it for playerID. Returns false when the player
// has no live connection; a client whose queue is full is dropped.
func (h *Hub) Send(playerID string, msg protocol.ServerMessage) bool {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.logger.Error("encode failed", "player_id", playerID, "error", err)
		return false
	}

	h.mu.RLock()
	client := h.clients[playerID]
	h.mu.RUnlock()
	if client == nil {
		return false
	}

	if !client.enqueue(data) {
		h.logger.Warn("send queue full, dropping client", "player_id", playerID)
		client.Close()
		return false
	}
	return true
}

// ClosePlayer tears down the player's connection if one is live.
func (h *Hub) ClosePlayer(playerID string) {
	h.mu.RLock()
	client := h.clients[playerID]
	h.mu.RUnlock()
	if client != nil {
		client.Close()
	}
}

// Count reports the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection. Used on server exit.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

// drop removes the client from the hub, unless a newer connection has
// already replaced it under the same player ID.
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	if h.clients[c.playerID] == c {
		delete(h.clients, c.playerID)
	}
	remaining := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("client unregistered", "player_id", c.playerID, "total_clients", remaining)
}

// readPump pumps frames from the WebSocket connection to the handler.
func (c *Client) readPump(handler FrameHandler) {
	defer func() {
		c.hub.drop(c)
		c.Close()
		c.conn.Close()
		handler.Disconnect(c.playerID)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("read error", "player_id", c.playerID, "error", err)
			}
			break
		}
		handler.HandleFrame(c.playerID, data)
	}
}

// writePump pumps queued messages to the WebSocket connection. Each queue
// entry goes out as its own text message so clients can parse frame by frame.
func (c *Client) writePump() {
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
