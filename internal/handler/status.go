package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dstrand/tally/internal/connectivity"
	"github.com/dstrand/tally/internal/store"
	"github.com/dstrand/tally/internal/sync"
)

type StatusHandler struct {
	monitor *connectivity.Monitor
	pending *store.PendingOpStore
	syncer  *sync.Syncer
	logger  *slog.Logger
}

func NewStatusHandler(monitor *connectivity.Monitor, pending *store.PendingOpStore, syncer *sync.Syncer, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{monitor: monitor, pending: pending, syncer: syncer, logger: logger}
}

// Status reports the sync indicator state and queue depth.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	queued, err := h.pending.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read queue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":  h.monitor.State(),
		"queued": queued,
	})
}

// Connectivity lets the host shell feed the platform connectivity signal.
func (h *StatusHandler) Connectivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online *bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
		writeError(w, http.StatusBadRequest, "expected {\"online\": true|false}")
		return
	}

	h.monitor.Report(*req.Online)
	writeJSON(w, http.StatusOK, map[string]any{"state": h.monitor.State()})
}

// TriggerSync kicks off a drain pass in the background. Reentrant
// triggers are absorbed by the syncer's guard.
func (h *StatusHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := h.syncer.Sync(ctx); err != nil {
			h.logger.Warn("manual sync failed", "error", err)
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}
