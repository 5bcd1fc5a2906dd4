package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statsHandler serves the live statistics of reg as JSON.
func statsHandler(reg *dispatch.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reg.Stats())
	}
}

func (a *App) healthcheckMux(reg *dispatch.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/stats", statsHandler(reg))
	return mux
}

// startHealthcheckServer serves /health and /stats for the duration of a run.
// The returned function shuts the server down.
func (a *App) startHealthcheckServer(ctx context.Context, port int, reg *dispatch.Registry) func() {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring health check server.")

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.healthcheckMux(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("Health check server failed to listen.", "error", err)
		return func() {}
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", server.Addr))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Health check server shutdown failed", "error", err)
		}
		logger.Debug("Health check server shut down gracefully.")
	}
}
