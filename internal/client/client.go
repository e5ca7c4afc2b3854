// Package client is a Go consumer of the overlay WebSocket channel.
// It backs the overlay-tail tool and end-to-end tests.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"nhooyr.io/websocket"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

// EventBuffer is the length of the Events channel.
const EventBuffer = 16

// Client receives envelopes from an overlay server.
type Client struct {
	address string
	format  protocol.Format

	conn   *websocket.Conn
	events chan protocol.Envelope
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
}

// New creates a Client for a ws:// or wss:// address such as "ws://localhost:3000/ws".
func New(address string, format protocol.Format) *Client {
	return &Client{
		address: address,
		format:  format,
		events:  make(chan protocol.Envelope, EventBuffer),
	}
}

// Connect dials the server and starts receiving envelopes.
func (c *Client) Connect(ctx context.Context) error {
	target, err := c.url()
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	// Long messages with many emotes can exceed the default 32 KiB limit.
	conn.SetReadLimit(1 << 20)

	readCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receive(readCtx, conn)

	return nil
}

// Disconnect closes the connection and waits for the receiver to stop.
// Events is closed afterwards.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn, cancel := c.conn, c.cancel
	c.conn, c.cancel = nil, nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
	cancel()
	c.wg.Wait()
}

// IsConnected reports whether Connect succeeded and Disconnect has not been called.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Events delivers decoded envelopes in arrival order. It is closed when
// the connection ends.
func (c *Client) Events() <-chan protocol.Envelope {
	return c.events
}

func (c *Client) url() (string, error) {
	u, err := url.Parse(c.address)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", c.address, err)
	}
	if c.format == protocol.FormatProto {
		q := u.Query()
		q.Set("format", c.format.String())
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) receive(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()
	defer close(c.events)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				slog.Warn("error reading from server", slog.Any("err", err))
			}
			return
		}

		env, err := c.format.Decode(data)
		if err != nil {
			slog.Warn("failed to decode frame", slog.Any("err", err))
			continue
		}

		select {
		case c.events <- env:
		case <-ctx.Done():
			return
		}
	}
}
