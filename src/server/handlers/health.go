package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is implemented by dependencies that support health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency status. A failing database makes the
// service unavailable; a failing cache or storage only degrades it, since
// reads still succeed without them.
type HealthHandler struct {
	Database Pinger
	Cache    Pinger
	Storage  Pinger
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string)}
	status := http.StatusOK

	if h.Database != nil && !check(ctx, resp.Checks, "database", h.Database) {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	for name, p := range map[string]Pinger{"cache": h.Cache, "storage": h.Storage} {
		if p != nil && !check(ctx, resp.Checks, name, p) && resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	writeJSON(w, status, resp)
}

func check(ctx context.Context, checks map[string]string, name string, p Pinger) bool {
	if err := p.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "dependency", name, "error", err)
		checks[name] = "error"
		return false
	}
	checks[name] = "ok"
	return true
}

func Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
