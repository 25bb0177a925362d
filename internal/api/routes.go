package api

import "net/http"

// allow restricts a handler to a single HTTP method.
func allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func RegisterRoutes(mux *http.ServeMux, h *Handler) http.Handler {
	// Lookup API
	mux.HandleFunc("/canonical", allow(http.MethodGet, h.GetCanonical))

	// Admin APIs
	mux.HandleFunc("/admin/cache", allow(http.MethodDelete, h.InvalidateCache))
	mux.HandleFunc("/admin/keys", allow(http.MethodGet, h.ListKeys))
	mux.HandleFunc("/admin/logs", allow(http.MethodGet, h.GetLogs))

	// Observability APIs
	mux.HandleFunc("/metrics", allow(http.MethodGet, h.GetMetrics))
	mux.HandleFunc("/metrics/prometheus", allow(http.MethodGet, h.GetPrometheusMetrics))
	mux.HandleFunc("/health", allow(http.MethodGet, h.GetHealth))

	// Middlewares
	return Chain(
		mux,
		RecoveryMiddleware(h.logger, h.metrics),
		RequestIDMiddleware,
		LoggingMiddleware(h.logger, h.metrics),
	)
}
