// Package twitch connects to Twitch chat over IRC and forwards channel messages.
package twitch

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
)

// Message is one chat line as delivered by the platform.
type Message struct {
	Channel string
	Tags    map[string]string
	Text    string
	// Echo is set when the message was sent by the account we are logged in as.
	Echo bool
}

// Handler receives chat messages from the client.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message)
}

// Config holds the channel to join and optional credentials.
// Without credentials the client logs in anonymously (read only).
type Config struct {
	Channel    string
	Username   string
	OAuthToken string
}

// ircClient is the subset of go-twitch-irc used here.
type ircClient interface {
	OnPrivateMessage(func(twitchirc.PrivateMessage))
	OnConnect(func())
	OnReconnectMessage(func(twitchirc.ReconnectMessage))
	Join(channels ...string)
	Connect() error
	Disconnect() error
}

// Client wraps go-twitch-irc for a single channel.
type Client struct {
	client  ircClient
	handler Handler
	channel string
	login   string
	baseCtx context.Context
}

// NewClient builds the IRC client and registers callbacks.
func NewClient(cfg Config, handler Handler) *Client {
	var irc *twitchirc.Client
	if cfg.Username != "" && cfg.OAuthToken != "" {
		irc = twitchirc.NewClient(cfg.Username, oauthPassword(cfg.OAuthToken))
	} else {
		irc = twitchirc.NewAnonymousClient()
	}
	return newClient(irc, cfg, handler)
}

func newClient(irc ircClient, cfg Config, handler Handler) *Client {
	c := &Client{
		client:  irc,
		handler: handler,
		channel: NormalizeChannel(cfg.Channel),
		login:   strings.ToLower(cfg.Username),
	}

	irc.OnPrivateMessage(func(m twitchirc.PrivateMessage) {
		c.handler.HandleMessage(c.context(), c.toMessage(m))
	})

	irc.OnConnect(func() {
		slog.Info("twitch: connected", slog.String("channel", c.channel))
	})

	irc.OnReconnectMessage(func(m twitchirc.ReconnectMessage) {
		slog.Info("twitch: server requested reconnect", slog.String("raw", m.Raw))
	})

	irc.Join(c.channel)
	return c
}

// Run connects and blocks until ctx is cancelled or the connection fails for good.
// go-twitch-irc reconnects on its own; Run only returns on a terminal error.
func (c *Client) Run(ctx context.Context) error {
	c.baseCtx = ctx
	errCh := make(chan error, 1)

	go func() {
		errCh <- c.client.Connect()
	}()

	select {
	case <-ctx.Done():
		_ = c.client.Disconnect()
		if err := <-errCh; err != nil && !errors.Is(err, twitchirc.ErrClientDisconnected) {
			slog.Warn("twitch: disconnect", slog.Any("err", err))
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Channel returns the joined channel name.
func (c *Client) Channel() string {
	return c.channel
}

func (c *Client) toMessage(m twitchirc.PrivateMessage) Message {
	tags := make(map[string]string, len(m.Tags))
	for k, v := range m.Tags {
		tags[k] = v
	}
	return Message{
		Channel: NormalizeChannel(m.Channel),
		Tags:    tags,
		Text:    m.Message,
		Echo:    c.login != "" && strings.EqualFold(m.User.Name, c.login),
	}
}

func (c *Client) context() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}
	return context.Background()
}

// NormalizeChannel strips a leading '#' and lowercases the channel name.
func NormalizeChannel(ch string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
}

// oauthPassword adds the "oauth:" prefix IRC expects when it is missing.
func oauthPassword(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}
