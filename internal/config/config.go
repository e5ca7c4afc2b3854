// Package config parses and validates startup parameters and builds the
// immutable session configuration shared with overlay clients.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Limits for startup parameters.
const (
	MinPort   = 1
	MaxPort   = 65535
	MinHeight = 100
	MaxHeight = 2160
)

var channelPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,25}$`)

// Config holds the startup parameters.
type Config struct {
	Port     int
	Channel  string
	Height   int
	Seconds  float64
	Font     string
	NameFont string
	FontsDir string

	// Optional IRC login; anonymous when either is empty.
	BotUsername string
	OAuthToken  string

	LogLevel  string
	LogFormat string
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load parses flags from args with defaults taken from the environment and validates the result.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv, io.Discard)
}

// LoadWithUsage is Load but prints flag usage and errors to w.
func LoadWithUsage(args []string, w io.Writer) (Config, error) {
	return load(args, os.Getenv, w)
}

func load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("overlay", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := Config{}
	fs.IntVar(&cfg.Port, "port", envInt(getenv, "OVERLAY_PORT", 3000), "HTTP port to listen on (1-65535)")
	fs.StringVar(&cfg.Channel, "username", getenv("TWITCH_CHANNEL"), "Twitch channel to read chat from")
	fs.IntVar(&cfg.Height, "height", envInt(getenv, "OVERLAY_HEIGHT", 1080), "overlay viewport height in pixels (100-2160)")
	fs.Float64Var(&cfg.Seconds, "seconds", envFloat(getenv, "OVERLAY_SECONDS", 10), "seconds a message stays visible")
	fs.StringVar(&cfg.Font, "font", envString(getenv, "OVERLAY_FONT", "Arial"), "message font name (file base name in the fonts directory)")
	fs.StringVar(&cfg.NameFont, "namefont", envString(getenv, "OVERLAY_NAME_FONT", "Arial"), "username font name")
	fs.StringVar(&cfg.FontsDir, "fonts-dir", envString(getenv, "OVERLAY_FONTS_DIR", "fonts"), "directory holding font files")
	fs.StringVar(&cfg.LogLevel, "log-level", envString(getenv, "LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", envString(getenv, "LOG_FORMAT", "text"), "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.Channel = strings.TrimPrefix(strings.TrimSpace(cfg.Channel), "#")
	cfg.Font = strings.TrimSpace(cfg.Font)
	cfg.NameFont = strings.TrimSpace(cfg.NameFont)
	cfg.BotUsername = strings.TrimSpace(getenv("TWITCH_BOT_USERNAME"))
	cfg.OAuthToken = strings.TrimSpace(getenv("TWITCH_OAUTH_TOKEN"))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < MinPort || c.Port > MaxPort {
		return fmt.Errorf("%w: port must be between %d and %d, got %d", ErrInvalid, MinPort, MaxPort, c.Port)
	}
	if c.Channel == "" {
		return fmt.Errorf("%w: username (channel) is required", ErrInvalid)
	}
	if !channelPattern.MatchString(c.Channel) {
		return fmt.Errorf("%w: username must be 3-25 letters, digits or underscores, got %q", ErrInvalid, c.Channel)
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalid, MinHeight, MaxHeight, c.Height)
	}
	if !(c.Seconds > 0) {
		return fmt.Errorf("%w: seconds must be greater than 0, got %v", ErrInvalid, c.Seconds)
	}
	if c.Font == "" {
		return fmt.Errorf("%w: font must not be empty", ErrInvalid)
	}
	if c.NameFont == "" {
		return fmt.Errorf("%w: namefont must not be empty", ErrInvalid)
	}
	if (c.BotUsername == "") != (c.OAuthToken == "") {
		return fmt.Errorf("%w: TWITCH_BOT_USERNAME and TWITCH_OAUTH_TOKEN must be set together", ErrInvalid)
	}
	return nil
}

func envString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt and envFloat ignore unparsable values; the flag default then applies
// and validation reports the effective value.
func envInt(getenv func(string) string, key string, def int) int {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(getenv func(string) string, key string, def float64) float64 {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
