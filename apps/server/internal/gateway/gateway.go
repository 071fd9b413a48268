// Package gateway terminates websocket connections and routes client
// envelopes to the lobby and rooms.
package gateway

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trio-lite/apps/server/internal/auth"
	"trio-lite/apps/server/internal/codec"
	"trio-lite/apps/server/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents one websocket client.
type Connection struct {
	ID        string
	AccountID uint64
	Username  string
	Conn      *websocket.Conn
	Send      chan []byte
	Gateway   *Gateway
	LastPing  time.Time

	// Current room association; set after a successful join.
	mu   sync.Mutex
	room *room.Room
}

// Gateway manages websocket connections.
type Gateway struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	accountConns map[uint64]*Connection
	nextConnID   uint64

	auth  auth.Service
	lobby *room.Lobby
}

func New(authService auth.Service) *Gateway {
	return &Gateway{
		connections:  make(map[string]*Connection),
		accountConns: make(map[uint64]*Connection),
		auth:         authService,
	}
}

// SetLobby wires the lobby in after construction; the lobby's broadcast
// function points back at this gateway.
func (g *Gateway) SetLobby(l *room.Lobby) {
	g.lobby = l
}

// HandleWebSocket upgrades the request and starts the connection pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	c := &Connection{
		ID:       connID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[connID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] client connected: %s, total: %d", connID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.leaveRoom()
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] read error: %v", err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.Decode(data)
	if err != nil {
		log.Printf("[Gateway] bad envelope from %s: %v", c.ID, err)
		c.sendError(1, "invalid message format")
		return
	}

	if env.Type != codec.ClientHello && c.AccountID == 0 {
		c.sendError(2, "hello first")
		return
	}

	switch env.Type {
	case codec.ClientHello:
		c.handleHello(env)
	case codec.ClientJoin:
		c.handleJoin(env)
	case codec.ClientPress:
		c.handlePress(env)
	case codec.ClientLeave:
		c.handleLeave(env)
	default:
		log.Printf("[Gateway] unknown message type %q from %s", env.Type, c.ID)
	}
}

// handleHello authenticates the connection. An empty token starts a
// guest session; a session token resumes an account.
func (c *Connection) handleHello(env codec.ClientEnvelope) {
	var (
		accountID uint64
		username  string
		token     = env.Token
	)
	if env.Token != "" {
		if id, name, ok := c.Gateway.auth.ResolveSession(env.Token); ok {
			accountID, username = id, name
		}
	}
	if accountID == 0 {
		// No token or a stale one: fall back to a guest session.
		accountID, token, _ = c.Gateway.auth.ResolveOrCreateGuest(env.Token)
	}

	c.AccountID = accountID
	c.Username = username
	c.Gateway.bindAccount(c)

	c.queue(codec.Wrap("", 0, codec.ServerEnvelope{
		Type:    codec.ServerWelcome,
		Welcome: &codec.WelcomeMsg{AccountID: accountID, Username: username, Token: token, AgentID: -1},
	}))
	log.Printf("[Gateway] %s authenticated as account %d", c.ID, accountID)
}

func (c *Connection) handleJoin(codec.ClientEnvelope) {
	r, res, err := c.Gateway.lobby.QuickStart(c.AccountID)
	if err != nil {
		c.sendError(4, err.Error())
		return
	}
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()

	c.queue(codec.Wrap(r.ID, 0, codec.ServerEnvelope{
		Type:    codec.ServerWelcome,
		Welcome: &codec.WelcomeMsg{AccountID: c.AccountID, Username: c.Username, AgentID: res.AgentID},
	}))
	log.Printf("[Gateway] account %d joined %s (seat=%d)", c.AccountID, r.ID, res.AgentID)
}

func (c *Connection) handlePress(env codec.ClientEnvelope) {
	r := c.currentRoom()
	if r == nil {
		c.sendError(5, "not in a room")
		return
	}
	res := r.SubmitEvent(room.Event{Type: room.EventPress, AccountID: c.AccountID, Slot: env.Slot})
	if res.Err != nil {
		c.sendError(6, res.Err.Error())
	}
}

func (c *Connection) handleLeave(codec.ClientEnvelope) {
	c.leaveRoom()
}

func (c *Connection) currentRoom() *room.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Connection) leaveRoom() {
	c.mu.Lock()
	r := c.room
	c.room = nil
	c.mu.Unlock()
	if r == nil || c.AccountID == 0 {
		return
	}
	r.SubmitEvent(room.Event{Type: room.EventLeave, AccountID: c.AccountID})
}

func (c *Connection) sendError(code int, msg string) {
	c.queue(codec.Wrap("", 0, codec.ServerEnvelope{
		Type:  codec.ServerError,
		Error: &codec.ErrorMsg{Code: code, Message: msg},
	}))
}

func (c *Connection) queue(data []byte) {
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full.
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) bindAccount(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accountConns[c.AccountID] = c
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if cur, ok := g.accountConns[c.AccountID]; ok && cur == c {
		delete(g.accountConns, c.AccountID)
	}
	log.Printf("[Gateway] client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// BroadcastToAccount sends a message to one account's connection; rooms
// use this as their broadcast function.
func (g *Gateway) BroadcastToAccount(accountID uint64, data []byte) {
	g.mu.RLock()
	c := g.accountConns[accountID]
	g.mu.RUnlock()
	if c != nil {
		c.queue(data)
	}
}

// Broadcast sends a message to every connection.
func (g *Gateway) Broadcast(message []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		c.queue(message)
	}
}
