package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/omochice/chat-overlay/internal/telemetry"
	"github.com/omochice/chat-overlay/pkg/protocol"
)

// Hub manages all connected overlays and handles broadcast.
// The settings it pushes on connect are fixed at construction.
type Hub struct {
	settings protocol.Settings
	clients  map[*Client]bool
	mu       sync.RWMutex
}

// NewHub creates a new Hub that greets every client with settings.
func NewHub(settings protocol.Settings) *Hub {
	return &Hub{
		settings: settings,
		clients:  make(map[*Client]bool),
	}
}

// Register queues the settings frame for the client and adds it to the hub.
// The settings frame is queued before the client can see any broadcast,
// so it is always the first frame the client receives.
func (h *Hub) Register(client *Client) error {
	frame, err := client.Format.Encode(protocol.NewSettingsEnvelope(h.settings))
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case client.Outgoing <- frame:
	default:
		return fmt.Errorf("client %s outgoing queue is full", client.ID)
	}
	h.clients[client] = true
	telemetry.SetClientsConnected(len(h.clients))
	return nil
}

// Unregister removes a client from the hub.
// After Unregister returns no further frames are queued for the client,
// so the caller may close client.Outgoing.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	telemetry.SetClientsConnected(len(h.clients))
}

// HandleClient reads from the client until its connection ends, then
// unregisters it and closes its outgoing queue. Overlays send nothing the
// relay acts on; reading only detects the disconnect.
func (h *Hub) HandleClient(ctx context.Context, client *Client) {
	for {
		if _, err := client.Conn.Read(ctx); err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("overlay read ended", slog.String("client", client.ID), slog.Any("err", err))
			}
			break
		}
	}

	h.Unregister(client)
	close(client.Outgoing)
}

// ClientCount returns number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends a chat event to every connected client and returns
// how many clients had it queued.
func (h *Hub) Publish(ev protocol.ChatEvent) int {
	return h.Broadcast(protocol.NewChatEnvelope(ev))
}

// Broadcast queues the envelope on every client. Each format is encoded once.
// A client whose queue is full misses the frame; other clients are unaffected.
func (h *Hub) Broadcast(env protocol.Envelope) int {
	frames := make(map[protocol.Format][]byte, 2)

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients {
		frame, ok := frames[client.Format]
		if !ok {
			var err error
			frame, err = client.Format.Encode(env)
			if err != nil {
				slog.Error("failed to encode frame", slog.String("event", env.Type.String()), slog.String("format", client.Format.String()), slog.Any("err", err))
				frame = nil
			}
			frames[client.Format] = frame
		}
		if frame == nil {
			continue
		}

		select {
		case client.Outgoing <- frame:
			delivered++
		default:
			slog.Warn("client queue full, dropping frame", slog.String("client", client.ID), slog.String("event", env.Type.String()))
			telemetry.IncFramesDropped()
		}
	}
	return delivered
}
