package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/google/uuid"

	"github.com/omochice/chat-overlay/internal/chat"
	"github.com/omochice/chat-overlay/pkg/protocol"
)

// WriteTimeout bounds a single frame write to one overlay.
const WriteTimeout = 10 * time.Second

// Handler upgrades HTTP requests to overlay connections and registers them with the Hub.
type Handler struct {
	hub *chat.Hub

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewHandler creates a Handler feeding connections into hub.
func NewHandler(hub *chat.Hub) *Handler {
	return &Handler{
		hub:   hub,
		conns: make(map[*Conn]struct{}),
	}
}

// ServeHTTP implements http.Handler.
// The frame format is chosen by the "format" query parameter; JSON text frames by default.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := protocol.ParseFormat(r.URL.Query().Get("format"))

	netConn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("err", err))
		return
	}

	conn := NewConn(netConn, r.RemoteAddr, format)
	if !h.track(conn) {
		conn.Close()
		return
	}

	client := chat.NewClient(uuid.NewString(), conn, format)
	if err := h.hub.Register(client); err != nil {
		slog.Error("failed to register overlay", slog.String("client", client.ID), slog.Any("err", err))
		h.untrack(conn)
		conn.Close()
		h.wg.Add(-2)
		return
	}

	slog.Info("overlay connected",
		slog.String("client", client.ID),
		slog.String("remote", conn.RemoteAddr()),
		slog.String("format", format.String()))

	go h.readLoop(client, conn)
	go h.writeLoop(client)
}

// Close disconnects every overlay and waits for their goroutines to finish.
// Connections arriving afterwards are refused.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	h.wg.Wait()
}

// track records c and reserves the read and write loops in wg.
// It refuses connections once Close has begun.
func (h *Handler) track(c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	// Added under mu so Close never waits while a loop pair is still being added.
	h.wg.Add(2)
	return true
}

func (h *Handler) untrack(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Handler) readLoop(client *chat.Client, conn *Conn) {
	defer h.wg.Done()
	h.hub.HandleClient(context.Background(), client)
	h.untrack(conn)
	slog.Info("overlay disconnected", slog.String("client", client.ID))
}

// writeLoop is the only writer of data frames for a client, so frames keep hub order.
func (h *Handler) writeLoop(client *chat.Client) {
	defer h.wg.Done()
	if err := client.WritePump(WriteTimeout); err != nil {
		slog.Warn("failed to write to overlay", slog.String("client", client.ID), slog.Any("err", err))
	}
}
