package middlewares

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap"
)

const (
	maxDurationSamples = 1000
	unmatchedRoute     = "unmatched"
)

// RequestKey labels one http_requests_total series.
type RequestKey struct {
	Method string
	Route  string
	Status string
}

// HTTPMetrics holds only HTTP request metrics
type HTTPMetrics struct {
	mutex            sync.RWMutex
	requestsTotal    map[RequestKey]int64
	requestDurations []float64
	activeRequests   int64
}

// HTTPMetricsSnapshot is a point-in-time copy of HTTPMetrics.
type HTTPMetricsSnapshot struct {
	RequestsTotal   map[RequestKey]int64
	AverageDuration float64
	ActiveRequests  int64
}

type MetricsMiddleware struct {
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics *HTTPMetrics
}

func NewMetricsMiddleware(logger *zap.Logger, tele *telemetry.Telemetry) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger: logger,
		tele:   tele,
		metrics: &HTTPMetrics{
			requestsTotal:    make(map[RequestKey]int64),
			requestDurations: make([]float64, 0, maxDurationSamples),
		},
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.metrics.mutex.Lock()
		m.metrics.activeRequests++
		m.metrics.mutex.Unlock()

		c.Next()

		duration := time.Since(start).Seconds()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		key := RequestKey{
			Method: c.Request.Method,
			Route:  route,
			Status: strconv.Itoa(c.Writer.Status()),
		}

		m.metrics.mutex.Lock()
		m.metrics.requestsTotal[key]++
		m.metrics.requestDurations = append(m.metrics.requestDurations, duration)
		m.metrics.activeRequests--

		if len(m.metrics.requestDurations) > maxDurationSamples {
			m.metrics.requestDurations = m.metrics.requestDurations[len(m.metrics.requestDurations)-maxDurationSamples:]
		}
		m.metrics.mutex.Unlock()

		if m.tele.IsEnabled() {
			m.logger.Debug("HTTP metrics recorded",
				zap.String("method", key.Method),
				zap.String("route", key.Route),
				zap.Int("status", c.Writer.Status()),
				zap.Float64("duration", duration))
		}
	}
}

// Snapshot returns a copy of the current counters. The average covers the
// last maxDurationSamples requests.
func (m *MetricsMiddleware) Snapshot() HTTPMetricsSnapshot {
	m.metrics.mutex.RLock()
	defer m.metrics.mutex.RUnlock()

	totals := make(map[RequestKey]int64, len(m.metrics.requestsTotal))
	for k, v := range m.metrics.requestsTotal {
		totals[k] = v
	}

	var avg float64
	if n := len(m.metrics.requestDurations); n > 0 {
		var sum float64
		for _, d := range m.metrics.requestDurations {
			sum += d
		}
		avg = sum / float64(n)
	}

	return HTTPMetricsSnapshot{
		RequestsTotal:   totals,
		AverageDuration: avg,
		ActiveRequests:  m.metrics.activeRequests,
	}
}
