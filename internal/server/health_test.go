package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Houeta/staff-directory/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	ShouldFail bool
}

func (m *MockPinger) Ping(_ context.Context) error {
	if m.ShouldFail {
		return errors.New("mock cache error")
	}
	return nil
}

func TestHealthChecker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name         string
		cacheFails   bool
		apiStatus    int
		apiHost      string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "all systems ok",
			apiStatus:    http.StatusOK,
			expectedCode: http.StatusOK,
			expectedBody: `{"cache":"ok","api_host":"ok"}`,
		},
		{
			name:         "api root without a page is fine",
			apiStatus:    http.StatusNotFound,
			expectedCode: http.StatusOK,
			expectedBody: `{"cache":"ok","api_host":"ok"}`,
		},
		{
			name:         "cache unavailable",
			cacheFails:   true,
			apiStatus:    http.StatusOK,
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"cache":"unavailable","api_host":"ok"}`,
		},
		{
			name:         "api host degraded",
			apiStatus:    http.StatusInternalServerError,
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"cache":"ok","api_host":"degraded"}`,
		},
		{
			name:         "api host unreachable",
			apiHost:      "invalid_url",
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"cache":"ok","api_host":"unreachable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPIServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodHead, r.Method)
				w.WriteHeader(tt.apiStatus)
			}))
			defer mockAPIServer.Close()

			host := mockAPIServer.URL
			if tt.apiHost != "" {
				host = tt.apiHost
			}
			healthChecker := server.NewHealthChecker(&MockPinger{ShouldFail: tt.cacheFails}, host, logger)

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rr := httptest.NewRecorder()

			healthChecker.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedCode, rr.Code)
			require.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestMonitoringHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "staffdir_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	health := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cache":"ok"}`))
	})
	ts := httptest.NewServer(server.NewMonitoringHandler(reg, health))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "staffdir_test_total 1")

	resp, err = ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.JSONEq(t, `{"cache":"ok"}`, string(body))
}

func TestStartMonitoringServer_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.StartMonitoringServer(ctx, slog.Default(), prometheus.NewRegistry(), &MockPinger{}, 0, "http://127.0.0.1:1")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("monitoring server did not stop")
	}
}
