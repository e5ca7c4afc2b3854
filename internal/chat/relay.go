package chat

import (
	"context"
	"log/slog"

	"github.com/omochice/chat-overlay/internal/telemetry"
	"github.com/omochice/chat-overlay/internal/twitch"
	"github.com/omochice/chat-overlay/pkg/protocol"
)

// Publisher accepts normalized chat events for fan-out.
type Publisher interface {
	Publish(ev protocol.ChatEvent) int
}

// Relay turns upstream chat notifications into broadcast events.
// It implements twitch.Handler.
type Relay struct {
	pub Publisher
}

// NewRelay creates a Relay publishing to pub.
func NewRelay(pub Publisher) *Relay {
	return &Relay{pub: pub}
}

// HandleMessage normalizes one message and publishes it.
// Messages that fail normalization are logged and dropped.
func (r *Relay) HandleMessage(_ context.Context, msg twitch.Message) {
	ev, err := Normalize(msg.Text, msg.Tags)
	if err != nil {
		slog.Warn("dropping chat message", slog.String("channel", msg.Channel), slog.Any("err", err))
		telemetry.IncChatRejected()
		return
	}

	n := r.pub.Publish(ev)
	telemetry.IncChatRelayed()
	slog.Debug("chat message relayed",
		slog.String("channel", msg.Channel),
		slog.String("username", ev.Username),
		slog.Bool("echo", msg.Echo),
		slog.Int("clients", n),
	)
}

var _ twitch.Handler = (*Relay)(nil)
