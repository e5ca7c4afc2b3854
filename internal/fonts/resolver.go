// Package fonts resolves overlay font names to files in the fonts directory.
//
// Lookups are case-insensitive on the base name and try each supported
// extension in priority order. The directory is re-scanned on every call.
package fonts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultFont is the browser-native font used when a requested font cannot be found.
// It never needs a file on disk.
const DefaultFont = "Arial"

// Extensions lists the supported font extensions in lookup priority order.
var Extensions = []string{".ttf", ".otf", ".woff", ".woff2"}

// ErrNotFound is returned when no file matches the requested font.
var ErrNotFound = errors.New("font not found")

// Font is a resolved font.
type Font struct {
	// Name is the requested base name, or DefaultFont for the built-in font.
	Name string
	// Path is the file on disk, empty for the built-in font.
	Path string
	// Builtin is set for DefaultFont, which the browser provides.
	Builtin bool
}

// Ext returns the extension of the stored file, lowercased.
func (f Font) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// Resolver looks fonts up in Dir.
type Resolver struct {
	Dir string
}

// NewResolver creates a Resolver for dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{Dir: dir}
}

// Resolve maps a font name to a file, trying every supported extension.
// The default font always resolves without touching the disk.
func (r *Resolver) Resolve(name string) (Font, error) {
	if IsDefault(name) {
		return Font{Name: DefaultFont, Builtin: true}, nil
	}
	return r.lookup(name, Extensions)
}

// ResolveFile resolves a client-supplied name that may carry an extension.
// A supported extension is stripped and restricts the lookup to itself, so
// "MyFont.ttf" never falls back to "myfont.otf".
func (r *Resolver) ResolveFile(requested string) (Font, error) {
	ext := filepath.Ext(requested)
	if ext == "" || !isSupported(ext) {
		return r.lookup(requested, Extensions)
	}
	base := strings.TrimSuffix(requested, ext)
	return r.lookup(base, []string{strings.ToLower(ext)})
}

// ResolveOrDefault returns name when it resolves, DefaultFont otherwise.
func (r *Resolver) ResolveOrDefault(name string) string {
	f, err := r.Resolve(name)
	if err != nil {
		slog.Warn("font not available, using default",
			slog.String("font", name),
			slog.String("default", DefaultFont),
			slog.String("dir", r.Dir),
			slog.Any("err", err),
		)
		return DefaultFont
	}
	return f.Name
}

func (r *Resolver) lookup(name string, exts []string) (Font, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Font{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Font{}, fmt.Errorf("%w: %q (no fonts directory %s)", ErrNotFound, name, r.Dir)
		}
		return Font{}, fmt.Errorf("failed to read fonts directory: %w", err)
	}

	fold := cases.Fold()
	for _, ext := range exts {
		want := fold.String(name + ext)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if fold.String(entry.Name()) == want {
				return Font{Name: name, Path: filepath.Join(r.Dir, entry.Name())}, nil
			}
		}
	}
	return Font{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// IsDefault reports whether name refers to the built-in default font.
func IsDefault(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), DefaultFont)
}

func isSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ContentType maps a font file to its MIME type.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
