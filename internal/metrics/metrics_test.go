package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe("mark", OutcomeOK, time.Now())
	m.Observe("mark", OutcomeOK, time.Now())
	m.Observe("mark", OutcomeInvalid, time.Now())

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("mark", OutcomeOK)); got != 2 {
		t.Errorf("mark/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Operations.WithLabelValues("mark", OutcomeInvalid)); got != 1 {
		t.Errorf("mark/invalid = %v, want 1", got)
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Skipped(2)
	m.Skipped(0)
	m.Exported(5)
	m.Exported(-1)

	if got := testutil.ToFloat64(m.BulkSkipped); got != 2 {
		t.Errorf("BulkSkipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ExportedRecords); got != 5 {
		t.Errorf("ExportedRecords = %v, want 5", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe("search", OutcomeOK, time.Now())
	m.Skipped(1)
	m.Exported(1)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Observe("delete", OutcomeOK, time.Now())

	tests := []struct {
		name       string
		health     HealthFunc
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "metrics exposes counters",
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   `attendance_operations_total{operation="delete",outcome="ok"} 1`,
		},
		{
			name:       "healthy store",
			health:     func(context.Context) error { return nil },
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name:       "unhealthy store",
			health:     func(context.Context) error { return errors.New("connection reset") },
			path:       "/healthz",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			Router(reg, tt.health, 0).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
