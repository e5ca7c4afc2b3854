// Package ws serves overlay connections over WebSocket using gobwas/ws.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

// MaxMessageSize bounds one message read from an overlay. Overlays send
// nothing the relay acts on, so a few KiB is plenty.
const MaxMessageSize = 4096

// ErrMessageTooBig is returned by Read when the peer sends more than
// MaxMessageSize bytes in one message. The connection is closed with 1009.
var ErrMessageTooBig = errors.New("ws: message too big")

// Conn adapts a hijacked server-side WebSocket connection to chat.Conn.
type Conn struct {
	conn       net.Conn
	remoteAddr string
	op         ws.OpCode

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an upgraded connection. Frames are written as text for JSON
// and as binary for protobuf.
func NewConn(conn net.Conn, remoteAddr string, format protocol.Format) *Conn {
	op := ws.OpText
	if format == protocol.FormatProto {
		op = ws.OpBinary
	}
	if remoteAddr == "" {
		remoteAddr = conn.RemoteAddr().String()
	}
	// The HTTP server's read and write deadlines survive the hijack.
	_ = conn.SetDeadline(time.Time{})
	return &Conn{conn: conn, remoteAddr: remoteAddr, op: op}
}

// Read implements chat.Conn.
// Control frames are answered inline; a close frame from the peer yields io.EOF.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}

	rd := &wsutil.Reader{
		Source:         c.conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		MaxFrameSize:   MaxMessageSize,
		OnIntermediate: c.handleControl,
	}
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, c.tooBig(err)
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr, rd); err != nil {
				var closed wsutil.ClosedError
				if errors.As(err, &closed) {
					return nil, io.EOF
				}
				return nil, err
			}
			continue
		}
		if hdr.OpCode&(ws.OpText|ws.OpBinary) == 0 {
			if err := rd.Discard(); err != nil {
				return nil, c.tooBig(err)
			}
			continue
		}
		// Fragmented messages pass the per-frame check; bound the total too.
		data, err := io.ReadAll(io.LimitReader(rd, MaxMessageSize+1))
		if err != nil {
			return nil, c.tooBig(err)
		}
		if len(data) > MaxMessageSize {
			return nil, c.tooBig(ErrMessageTooBig)
		}
		return data, nil
	}
}

// tooBig closes the connection with 1009 when err reports an oversized
// frame or message and returns ErrMessageTooBig; other errors pass through.
func (c *Conn) tooBig(err error) error {
	if !errors.Is(err, wsutil.ErrFrameTooLarge) && !errors.Is(err, ErrMessageTooBig) {
		return err
	}
	c.closeWith(ws.StatusMessageTooBig)
	return fmt.Errorf("%w: limit %d bytes", ErrMessageTooBig, MaxMessageSize)
}

// handleControl replies to ping and close frames under the write lock.
func (c *Conn) handleControl(h ws.Header, r io.Reader) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.ControlFrameHandler(c.conn, ws.StateServerSide)(h, r)
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return wsutil.WriteServerMessage(c.conn, c.op, data)
}

// Close sends a normal closure frame and closes the socket. Safe to call more than once.
func (c *Conn) Close() error {
	return c.closeWith(ws.StatusNormalClosure)
}

func (c *Conn) closeWith(code ws.StatusCode) error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		body := ws.NewCloseFrameBody(code, "")
		_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, body)
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}
