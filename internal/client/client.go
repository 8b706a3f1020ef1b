// Package client talks to a falldice evaluation server over WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/geniusisme/falldice/internal/report"
)

// ErrClosed is returned when the connection closes before a reply arrives.
var ErrClosed = errors.New("connection closed")

// ServerError is an evaluation error reported by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

// Client is one connection to an evaluation server. Each document sent
// gets exactly one reply, in order.
type Client struct {
	conn    *websocket.Conn
	replies chan []byte
	mu      sync.Mutex // serializes writes
	done    chan struct{}
	once    sync.Once

	errMu   sync.Mutex
	readErr error
}

// Dial connects to the server at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{
		conn:    conn,
		replies: make(chan []byte, 16),
		done:    make(chan struct{}),
	}

	// Start reading replies in background
	go c.readMessages()

	return c, nil
}

// readMessages continuously reads replies from the server
func (c *Client) readMessages() {
	defer close(c.replies)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.errMu.Lock()
			c.readErr = err
			c.errMu.Unlock()
			return
		}
		select {
		case c.replies <- message:
		case <-c.done:
			return
		}
	}
}

// Send writes one casts document to the server.
func (c *Client) Send(doc []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, doc)
}

// WaitForReply returns the next raw reply, or an error after timeout.
func (c *Client) WaitForReply(timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply, ok := <-c.replies:
		if !ok {
			c.errMu.Lock()
			defer c.errMu.Unlock()
			if c.readErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrClosed, c.readErr)
			}
			return nil, ErrClosed
		}
		return reply, nil
	case <-timer.C:
		return nil, fmt.Errorf("no reply within %s", timeout)
	}
}

// Evaluate sends doc and decodes the reply. A server-side failure is
// returned as *ServerError.
func (c *Client) Evaluate(doc []byte, timeout time.Duration) ([]report.Entry, error) {
	if err := c.Send(doc); err != nil {
		return nil, err
	}
	reply, err := c.WaitForReply(timeout)
	if err != nil {
		return nil, err
	}
	return decodeReply(reply)
}

func decodeReply(reply []byte) ([]report.Entry, error) {
	if trimmed := bytes.TrimSpace(reply); len(trimmed) > 0 && trimmed[0] == '{' {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &failure); err != nil {
			return nil, fmt.Errorf("failed to decode reply: %w", err)
		}
		return nil, &ServerError{Message: failure.Error}
	}

	var entries []report.Entry
	if err := json.Unmarshal(reply, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	return entries, nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}
