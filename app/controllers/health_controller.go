package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is implemented by every repositories.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports whether storage is reachable.
type HealthController struct {
	store Pinger
	log   *slog.Logger
}

func NewHealthController(store Pinger, log *slog.Logger) *HealthController {
	return &HealthController{store: store, log: log}
}

func (hc *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hc.store.Ping(ctx); err != nil {
		hc.log.Warn("health check failed", slog.String("error", err.Error()))
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
