package main

import (
	"net/http"

	"minhasfinancas/internal/shared/config"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)

	// Public user routes
	mux.HandleFunc("POST /api/usuarios", deps.UserHandler.HandleRegister)
	mux.HandleFunc("POST /api/usuarios/logout", deps.UserHandler.HandleLogout)

	var authenticate http.Handler = http.HandlerFunc(deps.UserHandler.HandleAuthenticate)
	if deps.LoginLimiter != nil {
		authenticate = middleware.RateLimit(deps.LoginLimiter, middleware.ClientIP(cfg.RateLimit.TrustProxyHeaders), log)(authenticate)
	}
	mux.Handle("POST /api/usuarios/autenticar", authenticate)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("GET /api/usuarios/{id}/saldo", protect(deps.UserHandler.HandleBalance))

	mux.Handle("GET /api/lancamentos", protect(deps.EntryHandler.HandleList))
	mux.Handle("POST /api/lancamentos", protect(deps.EntryHandler.HandleCreate))
	mux.Handle("GET /api/lancamentos/{id}", protect(deps.EntryHandler.HandleGet))
	mux.Handle("PUT /api/lancamentos/{id}", protect(deps.EntryHandler.HandleUpdate))
	mux.Handle("PUT /api/lancamentos/{id}/atualiza-status", protect(deps.EntryHandler.HandleUpdateStatus))
	mux.Handle("DELETE /api/lancamentos/{id}", protect(deps.EntryHandler.HandleDelete))

	// Tracing sits directly on the mux so it can read the matched pattern.
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Tracing(handler)
	}

	// Apply global middleware
	handler = middleware.Logging(log)(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
	}

	return handler
}
