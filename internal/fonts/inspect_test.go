package fonts_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/omochice/chat-overlay/internal/fonts"
)

func TestInspect_TTF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := fonts.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Family != "Go" {
		t.Errorf("Family = %q, want Go", info.Family)
	}
	if info.Glyphs == 0 {
		t.Error("Glyphs = 0, want > 0")
	}
}

func TestInspect_Unsupported(t *testing.T) {
	_, err := fonts.Inspect("font.woff2")
	if !errors.Is(err, fonts.ErrUnsupportedFormat) {
		t.Errorf("Inspect() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestInspect_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fonts.Inspect(path); err == nil {
		t.Error("Inspect() expected error for corrupt file, got nil")
	}
}
