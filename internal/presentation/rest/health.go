package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	pgutil "github.com/bibbank/loan-servicing/pkg/postgres"
)

// HealthHandler serves liveness and readiness probes over HTTP.
type HealthHandler struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(logger *slog.Logger, pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{logger: logger, pool: pool}
}

// RegisterRoutes attaches health-check routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "loan-servicing",
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if err := pgutil.HealthCheck(r.Context(), h.pool); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"service": "loan-servicing",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": "loan-servicing",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
