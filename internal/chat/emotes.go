package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

// ErrMalformedEmote is returned when an emote tag or position token cannot be parsed.
// Messages carrying one are rejected.
var ErrMalformedEmote = errors.New("malformed emote")

// EmotePositions lists the raw "start-end" tokens of one emote id.
type EmotePositions struct {
	ID        string
	Positions []string
}

// EmoteMap is the emote id to positions mapping in platform order.
type EmoteMap []EmotePositions

// ParseEmoteTag reads a Twitch IRC emotes tag such as "25:0-4,10-14/1902:6-10".
// An empty tag yields an empty map.
func ParseEmoteTag(raw string) (EmoteMap, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EmoteMap{}, nil
	}

	groups := strings.Split(raw, "/")
	m := make(EmoteMap, 0, len(groups))
	for _, group := range groups {
		id, positions, ok := strings.Cut(group, ":")
		if !ok || id == "" || positions == "" {
			return nil, fmt.Errorf("%w: group %q", ErrMalformedEmote, group)
		}
		m = append(m, EmotePositions{ID: id, Positions: strings.Split(positions, ",")})
	}
	return m, nil
}

// ExtractEmotes flattens the map into spans, id first then position,
// keeping the input order. Nothing is sorted or deduplicated.
func ExtractEmotes(m EmoteMap) ([]protocol.EmoteSpan, error) {
	spans := make([]protocol.EmoteSpan, 0, len(m))
	for _, e := range m {
		for _, token := range e.Positions {
			start, end, err := parsePosition(token)
			if err != nil {
				return nil, fmt.Errorf("emote %s: %w", e.ID, err)
			}
			spans = append(spans, protocol.EmoteSpan{ID: e.ID, Start: start, End: end})
		}
	}
	return spans, nil
}

func parsePosition(token string) (int, int, error) {
	startStr, endStr, ok := strings.Cut(token, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: position %q", ErrMalformedEmote, token)
	}
	start, err := parseOffset(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: position %q", ErrMalformedEmote, token)
	}
	end, err := parseOffset(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: position %q", ErrMalformedEmote, token)
	}
	return start, end, nil
}

// parseOffset accepts ASCII digits only; strconv.Atoi alone would let signs through.
func parseOffset(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
