package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/omochice/chat-overlay/internal/fonts"
	"github.com/omochice/chat-overlay/internal/telemetry"
)

// FontResolver finds the file backing a requested font name.
type FontResolver interface {
	ResolveFile(requested string) (fonts.Font, error)
}

// FontHandler serves font files from the fonts directory.
type FontHandler struct {
	resolver FontResolver
}

// NewFontHandler creates a FontHandler backed by resolver.
func NewFontHandler(resolver FontResolver) *FontHandler {
	return &FontHandler{resolver: resolver}
}

// RegisterRoutes mounts GET /fonts/{name}.
func (h *FontHandler) RegisterRoutes(r chi.Router) {
	r.Get("/fonts/{name}", h.serveFont)
}

func (h *FontHandler) serveFont(w http.ResponseWriter, r *http.Request) {
	name, err := fontParam(r)
	if err != nil {
		telemetry.ObserveFontRequest(telemetry.FontNotFound)
		http.NotFound(w, r)
		return
	}

	font, err := h.resolver.ResolveFile(name)
	if err != nil {
		if errors.Is(err, fonts.ErrNotFound) {
			telemetry.ObserveFontRequest(telemetry.FontNotFound)
			slog.Debug("font not found", slog.String("font", name))
			http.NotFound(w, r)
			return
		}
		telemetry.ObserveFontRequest(telemetry.FontError)
		slog.Error("font lookup failed", slog.String("font", name), slog.Any("err", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(font.Path)
	if err != nil {
		// The file can vanish between the directory scan and the open.
		if errors.Is(err, os.ErrNotExist) {
			telemetry.ObserveFontRequest(telemetry.FontNotFound)
			http.NotFound(w, r)
			return
		}
		telemetry.ObserveFontRequest(telemetry.FontError)
		slog.Error("failed to open font", slog.String("path", font.Path), slog.Any("err", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		telemetry.ObserveFontRequest(telemetry.FontError)
		slog.Error("failed to stat font", slog.String("path", font.Path), slog.Any("err", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	telemetry.ObserveFontRequest(telemetry.FontServed)
	w.Header().Set("Content-Type", fonts.ContentType(font.Path))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// fontParam returns the decoded {name} segment. chi routes on RawPath when
// the request path carries escapes Go would not produce itself, so the
// parameter is still escaped in that case.
func fontParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}
