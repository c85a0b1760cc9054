package http

import (
	"context"
	"net/http"
	"time"

	"minhasfinancas/internal/shared/logging"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log logging.Logger
}

func NewHealthHandler(db Pinger, log logging.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// HandleHealth reports ok when the database answers a ping. GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
