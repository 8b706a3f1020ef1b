package server

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// wsClient wraps one evaluation WebSocket connection.
type wsClient struct {
	conn *websocket.Conn
	ip   string
	mu   sync.Mutex // serializes writes
}

func newWSClient(conn *websocket.Conn, ip string, maxMessageSize int64) *wsClient {
	conn.SetReadLimit(maxMessageSize)
	return &wsClient{conn: conn, ip: ip}
}

// readDocument blocks until the next non-blank text message arrives.
func (c *wsClient) readDocument() ([]byte, error) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if doc := bytes.TrimSpace(message); len(doc) > 0 {
			return doc, nil
		}
	}
}

// writeJSON sends v as one text message.
func (c *wsClient) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsClient) close() error {
	return c.conn.Close()
}
