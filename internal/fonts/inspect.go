package fonts

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font/sfnt"
)

// ErrUnsupportedFormat is returned by Inspect for WOFF and WOFF2 files.
var ErrUnsupportedFormat = errors.New("unsupported font format")

// Info describes the naming table of a font file.
type Info struct {
	Family   string
	FullName string
	Glyphs   int
}

// Inspect reads the family and full name of a TTF or OTF file.
func Inspect(path string) (Info, error) {
	switch ContentType(path) {
	case "font/ttf", "font/otf":
	default:
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	var buf sfnt.Buffer
	info := Info{Glyphs: f.NumGlyphs()}
	if name, err := f.Name(&buf, sfnt.NameIDFamily); err == nil {
		info.Family = name
	}
	if name, err := f.Name(&buf, sfnt.NameIDFull); err == nil {
		info.FullName = name
	}
	return info, nil
}
