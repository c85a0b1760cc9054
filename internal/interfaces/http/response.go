package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"minhasfinancas/internal/domain"
	"minhasfinancas/internal/domain/entry"
	"minhasfinancas/internal/domain/user"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Business and
// authentication errors carry a message meant for the client; anything
// unexpected is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	switch {
	case domain.IsBusinessError(err), domain.IsAuthError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entry.ErrEntryNotFound):
		http.Error(w, "Lancamento nao encontrado.", http.StatusNotFound)
	case errors.Is(err, user.ErrUserNotFound):
		http.Error(w, "Usuario nao encontrado.", http.StatusNotFound)
	case errors.Is(err, entry.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, entry.ErrIDRequired):
		http.Error(w, "Lancamento id is required", http.StatusBadRequest)
	default:
		log.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func callerID(r *http.Request) (int64, bool) {
	return middleware.UserIDFromContext(r.Context())
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
