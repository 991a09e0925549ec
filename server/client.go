package server

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512 * 1024
)

var (
	errAlreadyJoined = errors.New("already joined to a document")
	errDisconnected  = errors.New("client disconnected")
)

// Client represents a single WebSocket connection.
type Client struct {
	ID    string
	Name  string
	Color string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// mu guards the join state. A client joins at most one session and
	// never joins after its read pump has stopped.
	mu           sync.Mutex
	session      *Session
	disconnected bool
}

var (
	adjectives = []string{"Red", "Blue", "Green", "Gold", "Silver", "Purple", "Orange", "Teal", "Coral", "Jade"}
	animals    = []string{"Fox", "Owl", "Bear", "Wolf", "Hawk", "Deer", "Lynx", "Crow", "Dove", "Seal"}
	colors     = []string{"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6", "#1abc9c", "#e67e22", "#00bcd4", "#ff5722", "#8bc34a"}
)

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Client{
		ID:    generateID(r),
		Name:  adjectives[r.Intn(len(adjectives))] + " " + animals[r.Intn(len(animals))],
		Color: colors[r.Intn(len(colors))],
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, 256),
	}
}

func generateID(r *rand.Rand) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = chars[r.Intn(len(chars))]
	}
	return string(b)
}

func (c *Client) currentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// attach binds the client to s. It fails once the client is in a session
// or has disconnected, so a join routed after the connection dropped
// leaves no ghost member behind.
func (c *Client) attach(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.disconnected:
		return errDisconnected
	case c.session != nil:
		return errAlreadyJoined
	}
	c.session = s
	return nil
}

func (c *Client) detach() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// disconnect marks the client gone and returns the session that still
// has to be told, if any.
func (c *Client) disconnect() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return c.session
}

func (c *Client) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// ReadPump reads messages from the WebSocket and routes them.
func (c *Client) ReadPump() {
	defer func() {
		if s := c.disconnect(); s != nil {
			s.leave <- c
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	log := c.hub.log.WithField("client", c.ID)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("read error")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.route(msg, log)
	}
}

// route hands msg to the hub or to the client's session.
func (c *Client) route(msg ClientMessage, log *logrus.Entry) {
	switch msg.Type {
	case MsgJoin:
		// The session rejects a join that races an earlier one.
		if c.currentSession() != nil {
			c.sendError(errAlreadyJoined.Error())
			return
		}
		c.hub.joinDoc <- joinRequest{client: c, docID: msg.DocID}
	case MsgSelect, MsgSetStyle, MsgEdit, MsgLoad:
		s := c.currentSession()
		if s == nil {
			c.sendError("not joined to a document")
			return
		}
		s.incoming <- clientMessage{client: c, msg: msg}
	default:
		log.WithField("type", msg.Type).Debug("unknown message type")
		c.sendError("unknown message type: " + msg.Type)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
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
				c.conn.WriteMessage(websocket.CloseMessage, nil)
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

func (c *Client) sendMsg(msg ServerMessage) {
	select {
	case c.send <- msg.Encode():
	default:
		// Client too slow, drop message.
	}
}

func (c *Client) sendError(message string) {
	c.sendMsg(ServerMessage{Type: MsgError, Message: message})
}

func (c *Client) Info() ClientInfo {
	return ClientInfo{ID: c.ID, Name: c.Name, Color: c.Color}
}
