// Package protocol defines the frames pushed to overlay clients over the real-time channel.
package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventType names the kind of frame carried by an Envelope.
type EventType int

const (
	EventTypeChatMessage EventType = iota
	EventTypeSettings
)

// String returns the wire name of the event.
func (et EventType) String() string {
	switch et {
	case EventTypeChatMessage:
		return "chatMessage"
	case EventTypeSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ParseEventType maps a wire name back to an EventType.
func ParseEventType(name string) (EventType, error) {
	switch name {
	case "chatMessage":
		return EventTypeChatMessage, nil
	case "settings":
		return EventTypeSettings, nil
	default:
		return 0, fmt.Errorf("unknown event %q", name)
	}
}

// EmoteSpan marks one occurrence of an emote inside ChatEvent.Message.
// Start and End are inclusive offsets as supplied by the chat platform.
type EmoteSpan struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ChatEvent is the display-ready form of one inbound chat message.
type ChatEvent struct {
	Username string      `json:"username"`
	Message  string      `json:"message"`
	Color    string      `json:"color"`
	Emotes   []EmoteSpan `json:"emotes"`
}

// Settings is pushed once to every client when it connects.
type Settings struct {
	ViewportHeight int     `json:"viewportHeight"`
	MessageSeconds float64 `json:"messageSeconds"`
	MessageFont    string  `json:"messageFont"`
	NameFont       string  `json:"namefont"`
}

// Envelope is a single frame on the wire: {"event": ..., "data": ...}.
// Exactly one of Chat or Settings is set, matching Type.
type Envelope struct {
	Type     EventType
	Chat     *ChatEvent
	Settings *Settings
}

// NewChatEnvelope wraps a chat event.
func NewChatEnvelope(ev ChatEvent) Envelope {
	if ev.Emotes == nil {
		ev.Emotes = []EmoteSpan{}
	}
	return Envelope{Type: EventTypeChatMessage, Chat: &ev}
}

// NewSettingsEnvelope wraps session settings.
func NewSettingsEnvelope(s Settings) Envelope {
	return Envelope{Type: EventTypeSettings, Settings: &s}
}

type wireEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (e Envelope) payload() (any, error) {
	switch e.Type {
	case EventTypeChatMessage:
		if e.Chat == nil {
			return nil, fmt.Errorf("chatMessage envelope without payload")
		}
		return e.Chat, nil
	case EventTypeSettings:
		if e.Settings == nil {
			return nil, fmt.Errorf("settings envelope without payload")
		}
		return e.Settings, nil
	default:
		return nil, fmt.Errorf("unknown event type %d", e.Type)
	}
}

// EncodeJSON encodes the envelope as a JSON text frame.
func (e Envelope) EncodeJSON() ([]byte, error) {
	payload, err := e.payload()
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	out, err := json.Marshal(wireEnvelope{Event: e.Type.String(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return out, nil
}

// DecodeJSON decodes a JSON text frame into the envelope.
func (e *Envelope) DecodeJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e.fromWire(w.Event, w.Data)
}

// EncodeProto encodes the envelope as a binary frame holding a
// google.protobuf.Struct with the same shape as the JSON form.
func (e Envelope) EncodeProto() ([]byte, error) {
	st, err := e.toProto()
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// DecodeProto decodes a binary frame produced by EncodeProto.
func (e *Envelope) DecodeProto(data []byte) error {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e.fromProto(st)
}

// toProto converts the envelope into a protobuf Struct.
func (e Envelope) toProto() (*structpb.Struct, error) {
	var data map[string]any
	switch e.Type {
	case EventTypeChatMessage:
		if e.Chat == nil {
			return nil, fmt.Errorf("chatMessage envelope without payload")
		}
		emotes := make([]any, 0, len(e.Chat.Emotes))
		for _, span := range e.Chat.Emotes {
			emotes = append(emotes, map[string]any{
				"id":    span.ID,
				"start": span.Start,
				"end":   span.End,
			})
		}
		data = map[string]any{
			"username": e.Chat.Username,
			"message":  e.Chat.Message,
			"color":    e.Chat.Color,
			"emotes":   emotes,
		}
	case EventTypeSettings:
		if e.Settings == nil {
			return nil, fmt.Errorf("settings envelope without payload")
		}
		data = map[string]any{
			"viewportHeight": e.Settings.ViewportHeight,
			"messageSeconds": e.Settings.MessageSeconds,
			"messageFont":    e.Settings.MessageFont,
			"namefont":       e.Settings.NameFont,
		}
	default:
		return nil, fmt.Errorf("unknown event type %d", e.Type)
	}
	return structpb.NewStruct(map[string]any{
		"event": e.Type.String(),
		"data":  data,
	})
}

// fromProto populates the envelope from a protobuf Struct.
// The payload goes back through encoding/json so both formats share one decoder.
func (e *Envelope) fromProto(st *structpb.Struct) error {
	event := st.GetFields()["event"].GetStringValue()
	dataValue, ok := st.GetFields()["data"]
	if !ok {
		return fmt.Errorf("failed to decode envelope: missing data")
	}
	data, err := dataValue.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e.fromWire(event, data)
}

func (e *Envelope) fromWire(event string, data json.RawMessage) error {
	et, err := ParseEventType(event)
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	*e = Envelope{Type: et}
	switch et {
	case EventTypeChatMessage:
		var ev ChatEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode chatMessage: %w", err)
		}
		if ev.Emotes == nil {
			ev.Emotes = []EmoteSpan{}
		}
		e.Chat = &ev
	case EventTypeSettings:
		var s Settings
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode settings: %w", err)
		}
		e.Settings = &s
	}
	return nil
}
