package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"starsystem-server/internal/shared/response"
)

const snapshotPingTimeout = 2 * time.Second

type HealthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	SnapshotBackend string `json:"snapshot_backend"`
	Snapshots       string `json:"snapshots"`
}

// SnapshotChecker reports the configured snapshot backend and whether it
// answers.
type SnapshotChecker interface {
	SnapshotBackend(ctx context.Context) (string, error)
}

type HealthHandler struct {
	snapshots SnapshotChecker
}

func NewHealthHandler(snapshots SnapshotChecker) *HealthHandler {
	return &HealthHandler{snapshots: snapshots}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), snapshotPingTimeout)
	defer cancel()

	backend, err := h.snapshots.SnapshotBackend(ctx)
	snapshotStatus := "connected"
	status := "healthy"
	if err != nil {
		logger.Warn("Snapshot store ping failed", "backend", backend, "error", err)
		snapshotStatus = "disconnected"
		status = "degraded"
	}

	resp := HealthResponse{
		Status:          status,
		Timestamp:       time.Now().Format(time.RFC3339),
		SnapshotBackend: backend,
		Snapshots:       snapshotStatus,
	}

	response.Success(w, http.StatusOK, resp)
}
