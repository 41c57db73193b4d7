package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
	apierrors "github.com/Edelbertschen/taskfuchs-sub005/server/internal/errors"
)

// MetricsOverviewResponse represents the overview of requests served since startup.
type MetricsOverviewResponse struct {
	TotalRequests int64          `json:"total_requests"`
	SuccessRate   float64        `json:"success_rate"`
	AvgLatencyMs  int64          `json:"avg_latency_ms"`
	P50LatencyMs  int64          `json:"p50_latency_ms"`
	P95LatencyMs  int64          `json:"p95_latency_ms"`
	ErrorCount    int64          `json:"error_count"`
	Uptime        string         `json:"uptime"`
	Cache         map[string]any `json:"cache"`
}

// GetMetricsOverview returns the system metrics overview to the users listed in TASKFUCHS_METRICS_USERS.
// GET /api/system/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	if !s.Profile.IsMetricsUser(auth.GetUserID(c.Request().Context())) {
		return apierrors.PermissionDenied("metrics are restricted to operators")
	}
	snapshot := s.Metrics.Snapshot()

	var totalDuration int64
	for _, route := range snapshot.Routes {
		totalDuration += route.TotalDuration
	}
	var avgLatency int64
	if snapshot.RequestTotal > 0 {
		avgLatency = totalDuration / snapshot.RequestTotal
	}

	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalRequests: snapshot.RequestTotal,
		SuccessRate:   snapshot.SuccessRate(),
		AvgLatencyMs:  avgLatency,
		P50LatencyMs:  snapshot.P50Duration.Milliseconds(),
		P95LatencyMs:  snapshot.P95Duration.Milliseconds(),
		ErrorCount:    snapshot.RequestFailed,
		Uptime:        time.Since(s.startedAt).Truncate(time.Second).String(),
		Cache:         s.Store.CacheStats(),
	})
}
