package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/pkg/utils"
)

const readyTimeout = 3 * time.Second

// ReadinessSource exposes what /ready needs to know
type ReadinessSource interface {
	HasSession() bool
	CheckUpstream(ctx context.Context) error
	LatestSnapshot(ctx context.Context) (*entities.Snapshot, error)
}

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	source         ReadinessSource
	snapshotMaxAge time.Duration
}

// NewHealthHandler crea una nueva instancia del health handler.
// Un snapshot más antiguo que snapshotMaxAge se informa como "stale" (0 lo desactiva).
func NewHealthHandler(source ReadinessSource, snapshotMaxAge time.Duration) *HealthHandler {
	return &HealthHandler{
		source:         source,
		snapshotMaxAge: snapshotMaxAge,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the process is running. Does not check dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("healthy", map[string]string{
		"service": "running",
	}))
}

// Ready godoc
// @Summary Readiness check
// @Description Verifies that the upstream session is open and the pricing API answers. The snapshot state is informative only.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "Session closed or upstream unreachable"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	services := make(map[string]string)
	ready := true

	if !h.source.HasSession() {
		services["session"] = "closed"
		ready = false
	} else {
		services["session"] = "open"
		if err := h.source.CheckUpstream(ctx); err != nil {
			services["upstream"] = "unreachable"
			ready = false
		} else {
			services["upstream"] = "ready"
		}
	}

	snapshot, err := h.source.LatestSnapshot(ctx)
	switch {
	case err == nil && utils.IsTimestampStale(snapshot.FetchedAt, time.Now(), h.snapshotMaxAge):
		services["snapshot"] = "stale"
	case err == nil:
		services["snapshot"] = "ready"
	case errors.Is(err, entities.ErrSnapshotNotFound):
		services["snapshot"] = "pending"
	default:
		services["snapshot"] = "error"
	}

	if !ready {
		writeJSONResponse(w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}
	writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("ready", services))
}
