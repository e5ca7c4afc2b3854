package chat

import (
	"fmt"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

const (
	// DefaultUsername is shown when the platform sends no display name.
	DefaultUsername = "Anonymous"
	// DefaultColor is used when the chatter has no name color set.
	DefaultColor = "#ffffff"
)

// IRC tag keys read by Normalize.
const (
	TagDisplayName = "display-name"
	TagColor       = "color"
	TagEmotes      = "emotes"
)

// Normalize builds the outbound event for one chat message.
// It is a pure transform: one call, one event.
func Normalize(text string, tags map[string]string) (protocol.ChatEvent, error) {
	emoteMap, err := ParseEmoteTag(tags[TagEmotes])
	if err != nil {
		return protocol.ChatEvent{}, fmt.Errorf("normalize: %w", err)
	}
	spans, err := ExtractEmotes(emoteMap)
	if err != nil {
		return protocol.ChatEvent{}, fmt.Errorf("normalize: %w", err)
	}

	return protocol.ChatEvent{
		Username: valueOr(tags[TagDisplayName], DefaultUsername),
		Message:  text,
		Color:    valueOr(tags[TagColor], DefaultColor),
		Emotes:   spans,
	}, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
