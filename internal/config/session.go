package config

import (
	"github.com/omochice/chat-overlay/pkg/protocol"
)

// FontResolver picks a usable font name, falling back to the default.
type FontResolver interface {
	ResolveOrDefault(name string) string
}

// Session is the display configuration fixed at startup.
// It is passed by value; nothing mutates it after NewSession returns.
type Session struct {
	ViewportHeight int
	MessageSeconds float64
	MessageFont    string
	NameFont       string
}

// NewSession resolves the configured fonts and freezes the result.
func NewSession(cfg Config, fonts FontResolver) Session {
	return Session{
		ViewportHeight: cfg.Height,
		MessageSeconds: cfg.Seconds,
		MessageFont:    fonts.ResolveOrDefault(cfg.Font),
		NameFont:       fonts.ResolveOrDefault(cfg.NameFont),
	}
}

// Settings returns the payload pushed to each overlay client on connect.
func (s Session) Settings() protocol.Settings {
	return protocol.Settings{
		ViewportHeight: s.ViewportHeight,
		MessageSeconds: s.MessageSeconds,
		MessageFont:    s.MessageFont,
		NameFont:       s.NameFont,
	}
}
