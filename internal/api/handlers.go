package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"canoncache/internal/canon"
	"canoncache/internal/health"
	"canoncache/internal/logs"
	"canoncache/internal/metrics"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	canon    *canon.Canonicalizer
	metrics  *metrics.Registry
	logger   *logs.Logger
	analyzer *health.Analyzer
	prom     http.Handler
}

// NewHandler creates a new API handler.
func NewHandler(
	cz *canon.Canonicalizer,
	reg *metrics.Registry,
	logger *logs.Logger,
) *Handler {
	return &Handler{
		canon:    cz,
		metrics:  reg,
		logger:   logger,
		analyzer: health.NewAnalyzer(reg, logger),
		prom:     metrics.PrometheusHandler(reg, "canoncache"),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

/* ---------------- GET /canonical?path= ---------------- */

type canonicalResponse struct {
	Path      string `json:"path"`
	Canonical string `json:"canonical"`
}

func (h *Handler) GetCanonical(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path query parameter", http.StatusBadRequest)
		return
	}

	canonical, err := h.canon.Canonicalize(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, canonicalResponse{Path: path, Canonical: canonical})
}

/* ---------------- DELETE /admin/cache[?path=] ---------------- */

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if path := r.URL.Query().Get("path"); path != "" {
		h.canon.Forget(path)
	} else {
		h.canon.Invalidate()
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- GET /admin/keys ---------------- */

func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.canon.Cache().Snapshot())
}

/* ---------------- GET /admin/logs?n= ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	writeJSON(w, h.logger.GetLast(n))
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.metrics.Snapshot())
}

/* ---------------- GET /metrics/prometheus ---------------- */

func (h *Handler) GetPrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	h.prom.ServeHTTP(w, r)
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.analyzer.Analyze())
}
