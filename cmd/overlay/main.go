// Command overlay relays one Twitch channel's chat to browser overlays.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omochice/chat-overlay/internal/chat"
	"github.com/omochice/chat-overlay/internal/config"
	"github.com/omochice/chat-overlay/internal/fonts"
	"github.com/omochice/chat-overlay/internal/server"
	"github.com/omochice/chat-overlay/internal/telemetry"
	"github.com/omochice/chat-overlay/internal/twitch"
	"github.com/omochice/chat-overlay/web"
)

const (
	shutdownTimeout = 5 * time.Second
	reconnectDelay  = 5 * time.Second
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "overlay: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadWithUsage(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overlay: %v\n", err)
		os.Exit(2)
	}

	telemetry.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	telemetry.Init()

	resolver := fonts.NewResolver(cfg.FontsDir)
	session := config.NewSession(cfg, resolver)
	logFonts(resolver, session)

	hub := chat.NewHub(session.Settings())
	relay := chat.NewRelay(hub)

	srv := server.New(cfg.Addr(), server.Options{
		Channel: cfg.Channel,
		Hub:     hub,
		Fonts:   resolver,
		Static:  web.Static(),
	})
	if err := srv.Start(); err != nil {
		slog.Error("failed to start server", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	upstreamDone := make(chan struct{})
	go func() {
		defer close(upstreamDone)
		runUpstream(ctx, cfg, relay)
	}()

	slog.Info("overlay ready",
		slog.String("url", "http://localhost"+cfg.Addr()+"/"),
		slog.String("channel", cfg.Channel),
		slog.Int("viewportHeight", session.ViewportHeight),
		slog.Float64("messageSeconds", session.MessageSeconds))

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("shutdown", slog.Any("err", err))
	}
	<-upstreamDone

	slog.Info("overlay stopped")
}

// runUpstream keeps a chat connection alive until ctx is cancelled.
// Failures are logged; the HTTP side keeps serving meanwhile.
func runUpstream(ctx context.Context, cfg config.Config, relay *chat.Relay) {
	for {
		tc := twitch.NewClient(twitch.Config{
			Channel:    cfg.Channel,
			Username:   cfg.BotUsername,
			OAuthToken: cfg.OAuthToken,
		}, relay)

		err := tc.Run(ctx)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		slog.Error("twitch connection lost, retrying",
			slog.String("channel", tc.Channel()),
			slog.Duration("delay", reconnectDelay),
			slog.Any("err", err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func logFonts(resolver *fonts.Resolver, session config.Session) {
	for _, name := range []string{session.MessageFont, session.NameFont} {
		f, err := resolver.Resolve(name)
		if err != nil || f.Builtin {
			continue
		}
		info, err := fonts.Inspect(f.Path)
		if err != nil {
			slog.Debug("font not inspected", slog.String("path", f.Path), slog.Any("err", err))
			continue
		}
		slog.Info("font loaded",
			slog.String("name", name),
			slog.String("path", f.Path),
			slog.String("family", info.Family),
			slog.Int("glyphs", info.Glyphs))
	}
}
