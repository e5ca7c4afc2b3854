package protocol_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/omochice/chat-overlay/pkg/protocol"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		et   protocol.EventType
		want string
	}{
		{protocol.EventTypeChatMessage, "chatMessage"},
		{protocol.EventTypeSettings, "settings"},
		{protocol.EventType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestEnvelope_EncodeJSON_ChatMessage(t *testing.T) {
	env := protocol.NewChatEnvelope(protocol.ChatEvent{
		Username: "Bob",
		Message:  "LUL hi",
		Color:    "#ff0000",
		Emotes:   []protocol.EmoteSpan{{ID: "1", Start: 0, End: 2}},
	})

	data, err := env.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	want := `{"event":"chatMessage","data":{"username":"Bob","message":"LUL hi","color":"#ff0000","emotes":[{"id":"1","start":0,"end":2}]}}`
	if string(data) != want {
		t.Errorf("EncodeJSON() = %s, want %s", data, want)
	}
}

func TestEnvelope_EncodeJSON_EmptyEmotesIsArray(t *testing.T) {
	env := protocol.NewChatEnvelope(protocol.ChatEvent{Username: "a", Message: "b", Color: "#ffffff"})

	data, err := env.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	var raw struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := string(raw.Data["emotes"]); got != "[]" {
		t.Errorf("emotes = %s, want []", got)
	}
}

func TestEnvelope_EncodeJSON_Settings(t *testing.T) {
	env := protocol.NewSettingsEnvelope(protocol.Settings{
		ViewportHeight: 1080,
		MessageSeconds: 7.5,
		MessageFont:    "Arial",
		NameFont:       "Comic-Sans",
	})

	data, err := env.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	want := `{"event":"settings","data":{"viewportHeight":1080,"messageSeconds":7.5,"messageFont":"Arial","namefont":"Comic-Sans"}}`
	if string(data) != want {
		t.Errorf("EncodeJSON() = %s, want %s", data, want)
	}
}

func TestEnvelope_EncodeJSON_MissingPayload(t *testing.T) {
	tests := []struct {
		name string
		env  protocol.Envelope
	}{
		{"chat without payload", protocol.Envelope{Type: protocol.EventTypeChatMessage}},
		{"settings without payload", protocol.Envelope{Type: protocol.EventTypeSettings}},
		{"unknown type", protocol.Envelope{Type: protocol.EventType(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.env.EncodeJSON(); err == nil {
				t.Error("EncodeJSON() expected error, got nil")
			}
			if _, err := tt.env.EncodeProto(); err == nil {
				t.Error("EncodeProto() expected error, got nil")
			}
		})
	}
}

func TestEnvelope_DecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    protocol.Envelope
		wantErr bool
	}{
		{
			name: "chat message",
			data: `{"event":"chatMessage","data":{"username":"Bob","message":"hi","color":"#ff0000","emotes":[{"id":"25","start":0,"end":4}]}}`,
			want: protocol.NewChatEnvelope(protocol.ChatEvent{
				Username: "Bob",
				Message:  "hi",
				Color:    "#ff0000",
				Emotes:   []protocol.EmoteSpan{{ID: "25", Start: 0, End: 4}},
			}),
		},
		{
			name: "settings",
			data: `{"event":"settings","data":{"viewportHeight":720,"messageSeconds":3,"messageFont":"Arial","namefont":"Arial"}}`,
			want: protocol.NewSettingsEnvelope(protocol.Settings{
				ViewportHeight: 720,
				MessageSeconds: 3,
				MessageFont:    "Arial",
				NameFont:       "Arial",
			}),
		},
		{
			name:    "unknown event",
			data:    `{"event":"join","data":{}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `nope`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got protocol.Envelope
			err := got.DecodeJSON([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEnvelope_DecodeProto_Invalid(t *testing.T) {
	var env protocol.Envelope
	if err := env.DecodeProto([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("DecodeProto() expected error for garbage input, got nil")
	}
}
