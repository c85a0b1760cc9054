package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"minhasfinancas/internal/shared/config"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// StartServers creates and starts the main server and optional redirect server.
// Returns the main server and redirect server (nil if not enabled).
func StartServers(scfg ServerConfig, log logging.Logger) (*http.Server, *http.Server) {
	ctx := context.Background()

	srv := &http.Server{
		Addr:         scfg.Addr,
		Handler:      scfg.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var redirectSrv *http.Server

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		redirectSrv = createRedirectServer(scfg.AllowedHosts)
		go func() {
			log.Info(ctx, "http redirect server starting", "addr", redirectSrv.Addr)
			if err := redirectSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "http redirect server error", "error", err)
			}
		}()
	}

	go func() {
		var err error
		if scfg.TLSEnabled {
			log.Info(ctx, "https server starting", "addr", scfg.Addr)
			err = srv.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		} else {
			log.Info(ctx, "http server starting", "addr", scfg.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	return srv, redirectSrv
}

// GracefulShutdown drains the main and redirect servers.
func GracefulShutdown(srv, redirectSrv *http.Server, timeout time.Duration, log logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info(ctx, "server shutting down")

	if redirectSrv != nil {
		if err := redirectSrv.Shutdown(ctx); err != nil {
			log.Error(ctx, "error shutting down http redirect server", "error", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error(ctx, "error shutting down main server", "error", err)
	}

	log.Info(ctx, "server stopped")
}

// createRedirectServer creates an HTTP server that redirects all requests to HTTPS.
func createRedirectServer(allowedHosts []string) *http.Server {
	return &http.Server{
		Addr:         ":80",
		Handler:      redirectHandler(allowedHosts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func redirectHandler(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		// drop the port; HTTPS listens on the default one
		canonicalHost := host
		if h, _, err := net.SplitHostPort(host); err == nil {
			canonicalHost = h
		}

		http.Redirect(w, r, "https://"+canonicalHost+r.RequestURI, http.StatusMovedPermanently)
	})
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}
