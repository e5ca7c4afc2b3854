package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")
	logger.Info("hello", slog.String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("unexpected json log line: %s", out)
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "text")
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %s", buf.String())
	}
}

func TestHelpers_NoopBeforeInit(t *testing.T) {
	// Must not panic when metrics are not registered yet.
	if ClientsConnected == nil {
		SetClientsConnected(3)
		IncChatRelayed()
		IncChatRejected()
		IncFramesDropped()
		ObserveFontRequest(FontServed)
	}
}

func TestInit_Counters(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(ChatRelayed)
	IncChatRelayed()
	if got := testutil.ToFloat64(ChatRelayed); got != before+1 {
		t.Errorf("ChatRelayed = %v, want %v", got, before+1)
	}

	SetClientsConnected(2)
	if got := testutil.ToFloat64(ClientsConnected); got != 2 {
		t.Errorf("ClientsConnected = %v, want 2", got)
	}

	ObserveFontRequest(FontNotFound)
	if got := testutil.ToFloat64(FontRequests.WithLabelValues(FontNotFound)); got < 1 {
		t.Errorf("FontRequests{not_found} = %v, want >= 1", got)
	}
}
