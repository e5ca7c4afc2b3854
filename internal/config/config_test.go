package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/omochice/chat-overlay/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OVERLAY_PORT", "TWITCH_CHANNEL", "OVERLAY_HEIGHT", "OVERLAY_SECONDS",
		"OVERLAY_FONT", "OVERLAY_NAME_FONT", "OVERLAY_FONTS_DIR",
		"TWITCH_BOT_USERNAME", "TWITCH_OAUTH_TOKEN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load([]string{"-username", "mychannel"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Addr() = %q, want :3000", cfg.Addr())
	}
	if cfg.Channel != "mychannel" {
		t.Errorf("Channel = %q, want mychannel", cfg.Channel)
	}
	if cfg.Height != 1080 {
		t.Errorf("Height = %d, want 1080", cfg.Height)
	}
	if cfg.Seconds != 10 {
		t.Errorf("Seconds = %v, want 10", cfg.Seconds)
	}
	if cfg.Font != "Arial" || cfg.NameFont != "Arial" {
		t.Errorf("fonts = %q/%q, want Arial/Arial", cfg.Font, cfg.NameFont)
	}
	if cfg.FontsDir != "fonts" {
		t.Errorf("FontsDir = %q, want fonts", cfg.FontsDir)
	}
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load([]string{
		"-port", "8080",
		"-username", "#Some_User",
		"-height", "720",
		"-seconds", "2.5",
		"-font", "Comic-Sans",
		"-namefont", "Roboto",
		"-fonts-dir", "/srv/fonts",
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 8080 || cfg.Height != 720 || cfg.Seconds != 2.5 {
		t.Errorf("numeric values = %d/%d/%v", cfg.Port, cfg.Height, cfg.Seconds)
	}
	if cfg.Channel != "Some_User" {
		t.Errorf("Channel = %q, want Some_User", cfg.Channel)
	}
	if cfg.Font != "Comic-Sans" || cfg.NameFont != "Roboto" {
		t.Errorf("fonts = %q/%q", cfg.Font, cfg.NameFont)
	}
	if cfg.FontsDir != "/srv/fonts" {
		t.Errorf("FontsDir = %q", cfg.FontsDir)
	}
}

func TestLoad_EnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERLAY_PORT", "4000")
	t.Setenv("TWITCH_CHANNEL", "envchannel")
	t.Setenv("TWITCH_BOT_USERNAME", "mybot")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:abc")

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.Channel != "envchannel" {
		t.Errorf("Channel = %q, want envchannel", cfg.Channel)
	}
	if cfg.BotUsername != "mybot" || cfg.OAuthToken != "oauth:abc" {
		t.Errorf("credentials = %q/%q", cfg.BotUsername, cfg.OAuthToken)
	}

	// flags win over env
	cfg, err = config.Load([]string{"-port", "5000"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "missing username", args: nil},
		{name: "short username", args: []string{"-username", "ab"}},
		{name: "long username", args: []string{"-username", "abcdefghijklmnopqrstuvwxyz"}},
		{name: "username with dash", args: []string{"-username", "my-channel"}},
		{name: "port zero", args: []string{"-username", "mychannel", "-port", "0"}},
		{name: "port too high", args: []string{"-username", "mychannel", "-port", "65536"}},
		{name: "height too small", args: []string{"-username", "mychannel", "-height", "99"}},
		{name: "height too large", args: []string{"-username", "mychannel", "-height", "2161"}},
		{name: "zero seconds", args: []string{"-username", "mychannel", "-seconds", "0"}},
		{name: "negative seconds", args: []string{"-username", "mychannel", "-seconds", "-1"}},
		{name: "empty font", args: []string{"-username", "mychannel", "-font", " "}},
		{name: "empty namefont", args: []string{"-username", "mychannel", "-namefont", ""}},
		{name: "unknown flag", args: []string{"-username", "mychannel", "-bogus"}},
		{name: "non numeric port", args: []string{"-username", "mychannel", "-port", "abc"}},
		{
			name: "token without bot username",
			args: []string{"-username", "mychannel"},
			env:  map[string]string{"TWITCH_OAUTH_TOKEN": "oauth:abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoad_Boundaries(t *testing.T) {
	clearEnv(t)

	for _, args := range [][]string{
		{"-username", "abc", "-port", "1", "-height", "100"},
		{"-username", "abcdefghijklmnopqrstuvwxy", "-port", "65535", "-height", "2160"},
		{"-username", "mychannel", "-seconds", "0.1"},
	} {
		if _, err := config.Load(args); err != nil {
			t.Errorf("Load(%v) error: %v", args, err)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that exist, even when empty.
	os.Unsetenv("TWITCH_CHANNEL")
	os.Unsetenv("OVERLAY_PORT")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TWITCH_CHANNEL=fromdotenv\nOVERLAY_PORT=3100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := config.LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Channel != "fromdotenv" || cfg.Port != 3100 {
		t.Errorf("got channel %q port %d", cfg.Channel, cfg.Port)
	}
}
