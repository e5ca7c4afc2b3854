// Command overlay-tail connects to an overlay server and prints what overlays receive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/omochice/chat-overlay/internal/client"
	"github.com/omochice/chat-overlay/internal/telemetry"
	"github.com/omochice/chat-overlay/pkg/protocol"
)

func main() {
	serverAddr := flag.String("server", "ws://localhost:3000/ws", "overlay WebSocket address")
	format := flag.String("format", "json", "frame format: json or proto")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	telemetry.SetupLogger(os.Stderr, *logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*serverAddr, protocol.ParseFormat(*format))
	if err := c.Connect(ctx); err != nil {
		slog.Error("failed to connect", slog.String("server", *serverAddr), slog.Any("err", err))
		os.Exit(1)
	}
	defer c.Disconnect()

	slog.Info("connected", slog.String("server", *serverAddr), slog.String("format", *format))

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-c.Events():
			if !ok {
				slog.Info("server closed the connection")
				return
			}
			fmt.Println(render(env))
		}
	}
}

func render(env protocol.Envelope) string {
	switch env.Type {
	case protocol.EventTypeSettings:
		s := env.Settings
		return fmt.Sprintf("*** settings: height=%d seconds=%g font=%s namefont=%s ***",
			s.ViewportHeight, s.MessageSeconds, s.MessageFont, s.NameFont)
	default:
		m := env.Chat
		var b strings.Builder
		fmt.Fprintf(&b, "[%s %s]: %s", m.Username, m.Color, m.Message)
		for _, e := range m.Emotes {
			fmt.Fprintf(&b, " {%s %d-%d}", e.ID, e.Start, e.End)
		}
		return b.String()
	}
}
