// Package client talks to the blackjack websocket server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/server" // Reuse message types
)

const writeWait = 10 * time.Second

// ErrClosed is returned for calls on a closed connection
var ErrClosed = errors.New("connection closed")

// RequestError is a rejection reported by the server
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client is a websocket connection to the blackjack server. Calls are
// matched to replies by request id and may be made from several goroutines.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[string]chan *server.Message
	nextID  atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the server. http(s) URLs are converted to ws(s) and an
// empty path becomes /ws.
func Dial(ctx context.Context, serverURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	logger = logger.WithPrefix("client")
	logger.Info("Connecting to server", "url", u.String())

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan *server.Message),
		done:    make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// Close closes the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.conn.Close()
		<-c.done
	})
	return err
}

// readPump routes replies to waiting calls until the connection drops
func (c *Client) readPump() {
	defer close(c.done)
	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping unsolicited message", "type", msg.Type, "request", msg.RequestID)
			continue
		}
		select {
		case ch <- &msg:
		default:
			// The call already has its reply; this is the state that trails an error.
		}
	}
}

// call sends one request and waits for the first reply carrying its id
func (c *Client) call(ctx context.Context, t server.MessageType, data any) (*server.Message, error) {
	msg, err := server.NewMessage(t, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = strconv.FormatUint(c.nextID.Add(1), 10)

	ch := make(chan *server.Message, 1)
	c.mu.Lock()
	c.pending[msg.RequestID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
	}()

	select {
	case <-c.done:
		return nil, ErrClosed
	default:
	}

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", t, err)
	}

	select {
	case reply := <-ch:
		if reply.Type == server.MessageTypeError {
			var data server.ErrorData
			if err := json.Unmarshal(reply.Data, &data); err != nil {
				return nil, fmt.Errorf("decode error reply: %w", err)
			}
			return nil, &RequestError{Code: data.Code, Message: data.Message}
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

func expect[T any](reply *server.Message, t server.MessageType) (T, error) {
	var out T
	if reply.Type != t {
		return out, fmt.Errorf("expected %s reply, got %s", t, reply.Type)
	}
	if err := json.Unmarshal(reply.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s reply: %w", t, err)
	}
	return out, nil
}

func (c *Client) state(ctx context.Context, t server.MessageType, data any) (server.StateData, error) {
	reply, err := c.call(ctx, t, data)
	if err != nil {
		return server.StateData{}, err
	}
	return expect[server.StateData](reply, server.MessageTypeState)
}

// NewRound opens a session for the player on this connection
func (c *Client) NewRound(ctx context.Context, name string) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeNewRound, server.NewRoundData{PlayerName: name})
}

// Resume attaches this connection to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeResume, server.ResumeData{SessionID: sessionID})
}

// PlaceBets places one bet per hand slot and deals
func (c *Client) PlaceBets(ctx context.Context, bets []blackjack.Bet) (server.StateData, error) {
	return c.state(ctx, server.MessageTypePlaceBets, server.PlaceBetsData{Bets: bets})
}

// Rebet repeats the previous round's bets
func (c *Client) Rebet(ctx context.Context) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeRebet, nil)
}

// Act performs hit, stand, double or split on a hand
func (c *Client) Act(ctx context.Context, action string, hand int) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeAction, server.ActionData{Action: action, HandIndex: hand})
}

// ResetRound clears the table for the next round
func (c *Client) ResetRound(ctx context.Context) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeResetRound, nil)
}

// View fetches the current state
func (c *Client) View(ctx context.Context) (server.StateData, error) {
	return c.state(ctx, server.MessageTypeView, nil)
}

// Hint asks for the basic-strategy play on the active hand
func (c *Client) Hint(ctx context.Context) (server.HintData, error) {
	reply, err := c.call(ctx, server.MessageTypeHint, nil)
	if err != nil {
		return server.HintData{}, err
	}
	return expect[server.HintData](reply, server.MessageTypeHintReply)
}

// CashOut ends the session
func (c *Client) CashOut(ctx context.Context) (server.CashedOutData, error) {
	reply, err := c.call(ctx, server.MessageTypeCashOut, nil)
	if err != nil {
		return server.CashedOutData{}, err
	}
	return expect[server.CashedOutData](reply, server.MessageTypeCashedOut)
}
