package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/blackjack"
)

// Connection represents a WebSocket connection to a client. A connection
// plays at most one session at a time.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	sessionID   string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 64),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetSession associates this connection with a session
func (c *Connection) SetSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// Session returns the associated session id
func (c *Connection) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client. Messages are handled
// in order, so one client's actions never race each other.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Warn("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes one incoming message
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "session", c.Session(), "request", msg.RequestID)
	ctx := c.ctx

	switch msg.Type {
	case MessageTypeNewRound:
		var data NewRoundData
		if !c.decode(msg, &data) {
			return
		}
		id, s, err := c.gameService.NewRound(ctx, data.PlayerName)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.SetSession(id)
		c.sendState(msg, s, nil)

	case MessageTypeResume:
		var data ResumeData
		if !c.decode(msg, &data) {
			return
		}
		s, err := c.gameService.Get(ctx, data.SessionID)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.SetSession(data.SessionID)
		c.sendState(msg, s, nil)

	case MessageTypePlaceBets:
		var data PlaceBetsData
		if !c.decode(msg, &data) {
			return
		}
		c.withSession(msg, func(id string) (blackjack.Snapshot, error) {
			return c.gameService.PlaceBets(ctx, id, data.Bets)
		})

	case MessageTypeRebet:
		c.withSession(msg, func(id string) (blackjack.Snapshot, error) {
			return c.gameService.Rebet(ctx, id)
		})

	case MessageTypeAction:
		var data ActionData
		if !c.decode(msg, &data) {
			return
		}
		c.withSession(msg, func(id string) (blackjack.Snapshot, error) {
			return c.gameService.Act(ctx, id, data.Action, data.HandIndex)
		})

	case MessageTypeResetRound:
		c.withSession(msg, func(id string) (blackjack.Snapshot, error) {
			return c.gameService.ResetRound(ctx, id)
		})

	case MessageTypeView:
		id := c.Session()
		s, err := c.gameService.Get(ctx, id)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.sendState(msg, s, nil)

	case MessageTypeHint:
		hint, err := c.gameService.Hint(ctx, c.Session())
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.reply(msg, MessageTypeHintReply, hint)

	case MessageTypeCashOut:
		id := c.Session()
		s, err := c.gameService.CashOut(ctx, id)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.SetSession("")
		c.reply(msg, MessageTypeCashedOut, CashedOutData{SessionID: id, Player: s.Player.Name, Chips: s.Player.Chips})

	default:
		c.sendError(msg, fmt.Errorf("unknown message type %q: %w", msg.Type, ErrBadRequest))
	}
}

// withSession runs an action on the connection's session and replies with
// the new state. A rejected action sends the error and then the unchanged
// state carrying the rejection message.
func (c *Connection) withSession(msg *Message, fn func(id string) (blackjack.Snapshot, error)) {
	id := c.Session()
	if id == "" {
		c.sendError(msg, fmt.Errorf("no session, send new_round or resume first: %w", ErrBadRequest))
		return
	}
	s, err := fn(id)
	if err != nil {
		c.sendError(msg, err)
		if s.Phase != "" {
			c.sendState(msg, s, err)
		}
		return
	}
	c.sendState(msg, s, nil)
}

func (c *Connection) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendError(msg, fmt.Errorf("failed to parse %s data: %v: %w", msg.Type, err, ErrBadRequest))
		return false
	}
	return true
}

func (c *Connection) reply(req *Message, t MessageType, data any) {
	out, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	out.RequestID = req.RequestID
	_ = c.SendMessage(out)
}

func (c *Connection) sendState(req *Message, s blackjack.Snapshot, actionErr error) {
	view, err := c.gameService.View(s)
	if err != nil {
		c.sendError(req, err)
		return
	}
	state := StateData{SessionID: c.Session(), OK: actionErr == nil, Message: s.Message, View: view}
	c.reply(req, MessageTypeState, state)
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, err error) {
	code := errorCode(err)
	if code == CodeInternal {
		c.logger.Error("Request failed", "type", req.Type, "session", c.Session(), "error", err)
	} else {
		c.logger.Debug("Request rejected", "type", req.Type, "code", code, "error", err)
	}
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: err.Error()})
}
