package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

// OutgoingBuffer is the per-client frame queue length.
const OutgoingBuffer = 64

// Client represents a connected overlay with transport-agnostic connection.
type Client struct {
	ID       string
	Conn     Conn
	Format   protocol.Format
	Outgoing chan []byte
}

// NewClient creates a client with an empty outgoing queue.
func NewClient(id string, conn Conn, format protocol.Format) *Client {
	return &Client{
		ID:       id,
		Conn:     conn,
		Format:   format,
		Outgoing: make(chan []byte, OutgoingBuffer),
	}
}

// WritePump writes queued frames to the connection in queue order until
// Outgoing is closed, then closes the connection.
// Each write is bounded by timeout. On a write error the connection is
// closed, the rest of the queue is discarded and the error returned.
func (c *Client) WritePump(timeout time.Duration) error {
	defer c.Conn.Close()

	for data := range c.Outgoing {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := c.Conn.Write(ctx, data)
		cancel()
		if err != nil {
			// Closing the connection ends the reader, which closes Outgoing.
			c.Conn.Close()
			for range c.Outgoing {
			}
			return fmt.Errorf("write to %s: %w", c.Conn.RemoteAddr(), err)
		}
	}
	return nil
}
