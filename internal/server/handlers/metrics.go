package handlers

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/weatheria/weather-backend/internal/server/middlewares"
	"go.uber.org/zap"
)

// HTTPMetricsSource exposes the counters collected by the metrics middleware.
type HTTPMetricsSource interface {
	Snapshot() middlewares.HTTPMetricsSnapshot
}

type providerCallKey struct {
	provider string
	outcome  string
}

// AppMetrics holds application-level metrics
type AppMetrics struct {
	mutex         sync.RWMutex
	providerCalls map[providerCallKey]int64
}

type MetricsHandler struct {
	logger      *zap.Logger
	httpMetrics HTTPMetricsSource
	appMetrics  *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsSource) *MetricsHandler {
	return &MetricsHandler{
		logger:      logger,
		httpMetrics: httpMetrics,
		appMetrics: &AppMetrics{
			providerCalls: make(map[providerCallKey]int64),
		},
	}
}

// RecordProviderCall counts one call to the weather provider by outcome.
func (h *MetricsHandler) RecordProviderCall(_ context.Context, provider, outcome string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.providerCalls[providerCallKey{provider, outcome}]++
	h.appMetrics.mutex.Unlock()
}

// ServeMetrics writes the Prometheus text exposition format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.httpMetrics != nil {
		snap := h.httpMetrics.Snapshot()

		keys := make([]middlewares.RequestKey, 0, len(snap.RequestsTotal))
		for k := range snap.RequestsTotal {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b middlewares.RequestKey) int {
			return cmpOr(
				cmp.Compare(a.Route, b.Route),
				cmp.Compare(a.Method, b.Method),
				cmp.Compare(a.Status, b.Status),
			)
		})

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "http_requests_total{method=%q,route=%q,status=%q} %d\n",
				k.Method, k.Route, k.Status, snap.RequestsTotal[k])
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AverageDuration)

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
		b.WriteString("\n")
	}

	h.appMetrics.mutex.RLock()
	calls := make([]providerCallKey, 0, len(h.appMetrics.providerCalls))
	for k := range h.appMetrics.providerCalls {
		calls = append(calls, k)
	}
	slices.SortFunc(calls, func(a, b providerCallKey) int {
		return cmpOr(cmp.Compare(a.provider, b.provider), cmp.Compare(a.outcome, b.outcome))
	})

	b.WriteString("# HELP weather_provider_calls_total Total weather provider calls by outcome\n")
	b.WriteString("# TYPE weather_provider_calls_total counter\n")
	for _, k := range calls {
		fmt.Fprintf(&b, "weather_provider_calls_total{provider=%q,outcome=%q} %d\n",
			k.provider, k.outcome, h.appMetrics.providerCalls[k])
	}
	h.appMetrics.mutex.RUnlock()

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

// cmpOr returns the first of its arguments that is not zero
// (equivalent to cmp.Or, which requires Go 1.22).
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
