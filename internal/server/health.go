package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is the cached-user store as seen by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	cache      Pinger
	apiHost    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewHealthChecker(cache Pinger, apiHost string, log *slog.Logger) *HealthChecker {
	clientTO := 5
	return &HealthChecker{
		cache:      cache,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: time.Duration(clientTO) * time.Second},
		log:        log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.cache.Ping(req.Context()); err != nil {
		status["cache"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: cache store ping", "error", err)
	} else {
		status["cache"] = "ok"
	}

	headReq, err := http.NewRequestWithContext(req.Context(), http.MethodHead, h.apiHost, nil)
	var resp *http.Response
	if err == nil {
		resp, err = h.httpClient.Do(headReq)
	}
	switch {
	case err != nil:
		status["api_host"] = "unreachable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: api host unreachable", "host", h.apiHost, "error", err)
	case resp.StatusCode >= http.StatusInternalServerError:
		status["api_host"] = "degraded"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: api host returned error status",
			"host", h.apiHost, "status_code", resp.StatusCode)
	default:
		status["api_host"] = "ok"
	}
	if resp != nil {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(req.Context(), "Failed to close response body", "error", err)
		}
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
