// Package chat holds the relay core: emote extraction, event normalization
// and the hub that fans events out to overlay connections.
package chat

import "context"

// Conn abstracts one overlay connection.
// This interface isolates transport details from the hub.
type Conn interface {
	// Read reads a single frame from the client.
	// Returns io.EOF when connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single encoded frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
