package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ClientCounter reports connected overlays.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	channel string
	clients ClientCounter
}

// NewHealthHandler creates a HealthHandler for channel.
func NewHealthHandler(channel string, clients ClientCounter) *HealthHandler {
	return &HealthHandler{channel: channel, clients: clients}
}

type healthResponse struct {
	Status  string `json:"status"`
	Channel string `json:"channel"`
	Clients int    `json:"clients"`
}

// RegisterRoutes mounts GET /healthz.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)
}

func (h *HealthHandler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Channel: h.channel,
		Clients: h.clients.ClientCount(),
	})
}
