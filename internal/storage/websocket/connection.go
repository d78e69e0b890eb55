package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/OCAP2/missioneditor/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	sendChSize   = 64
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
)

var (
	errClosed       = errors.New("connection closed")
	errDisconnected = errors.New("connection lost")
)

// link is one dialled socket with its own write queue. A reconnect replaces
// the link; the old one's loops stop with it.
type link struct {
	conn   *ws.Conn
	sendCh chan []byte
	stop   chan struct{}
}

func newLink(conn *ws.Conn) *link {
	return &link{
		conn:   conn,
		sendCh: make(chan []byte, sendChSize),
		stop:   make(chan struct{}),
	}
}

// connection manages the current link and routes replies to the request
// waiting for them.
type connection struct {
	mu      sync.Mutex
	link    *link
	done    chan struct{} // closed on shutdown
	closed  bool
	nextID  uint64
	pending map[uint64]chan streaming.Reply

	wsURL  string
	secret string

	// first reconnect delay, shortened in tests
	backoff time.Duration

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		done:    make(chan struct{}),
		pending: make(map[uint64]chan streaming.Reply),
		backoff: time.Second,
		logger:  logger,
	}
}

// dial connects to the WebSocket server and starts read/write loops.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.start(conn)
	return nil
}

func (c *connection) start(conn *ws.Conn) {
	l := newLink(conn)
	c.mu.Lock()
	c.link = l
	c.mu.Unlock()

	go c.writeLoop(l)
	go c.readLoop(l)
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// writeLoop drains the link's queue. It returns on error or when the link
// stops.
func (c *connection) writeLoop(l *link) {
	for {
		select {
		case <-l.stop:
			return
		case data := <-l.sendCh:
			if err := l.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("WebSocket SetWriteDeadline error", "error", err)
				go c.reconnect(l)
				return
			}
			if err := l.conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				go c.reconnect(l)
				return
			}
		}
	}
}

// readLoop reads replies from the server and hands each to its request.
func (c *connection) readLoop(l *link) {
	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			case <-l.stop:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.reconnect(l)
			return
		}

		var reply streaming.Reply
		if err := json.Unmarshal(message, &reply); err != nil || reply.Type != streaming.TypeReply {
			c.logger.Debug("Non-reply message received", "raw", string(message))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[reply.ID]
		delete(c.pending, reply.ID)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Reply for unknown request", "id", reply.ID)
			continue
		}
		ch <- reply
	}
}

// failPending wakes every waiting request with err.
func (c *connection) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]chan streaming.Reply)
	c.mu.Unlock()
	for id, ch := range pending {
		ch <- streaming.Reply{Type: streaming.TypeReply, ID: id, Error: err.Error()}
	}
}

// reconnect re-establishes the WebSocket connection with exponential
// backoff. Requests in flight on the broken link fail.
func (c *connection) reconnect(broken *link) {
	c.mu.Lock()
	if c.closed || c.link != broken {
		c.mu.Unlock()
		return
	}
	c.link = nil
	close(broken.stop)
	_ = broken.conn.Close()
	c.mu.Unlock()

	c.failPending(errDisconnected)

	backoff := c.backoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", backoff)
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			_ = conn.Close()
			return
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		c.start(conn)
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// request sends env and blocks until its reply arrives, ctx ends or the
// link drops.
func (c *connection) request(ctx context.Context, env streaming.Envelope) (streaming.Reply, error) {
	reply := make(chan streaming.Reply, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return streaming.Reply{}, errClosed
	}
	l := c.link
	if l == nil {
		c.mu.Unlock()
		return streaming.Reply{}, errDisconnected
	}
	c.nextID++
	env.ID = c.nextID
	c.pending[env.ID] = reply
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, env.ID)
		c.mu.Unlock()
	}

	data, err := json.Marshal(env)
	if err != nil {
		forget()
		return streaming.Reply{}, fmt.Errorf("marshal %s: %w", env.Type, err)
	}

	select {
	case l.sendCh <- data:
	case <-l.stop:
		forget()
		return streaming.Reply{}, errDisconnected
	case <-ctx.Done():
		forget()
		return streaming.Reply{}, ctx.Err()
	case <-c.done:
		return streaming.Reply{}, errClosed
	}

	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		forget()
		return streaming.Reply{}, ctx.Err()
	case <-c.done:
		return streaming.Reply{}, errClosed
	}
}

// close sends a WebSocket close frame and shuts down all goroutines.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	l := c.link
	c.link = nil
	c.mu.Unlock()

	if l != nil {
		close(l.stop)
		_ = l.conn.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		return l.conn.Close()
	}
	return nil
}
