package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weatheria/weather-backend/internal/config"
	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/internal/service"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const londonBody = `{"main":{"temp":15.2,"feels_like":14.8,"humidity":70},"wind":{"speed":3.1},"weather":[{"description":"cloudy","icon":"04d"}],"name":"London"}`

type mockProvider struct {
	calls   atomic.Int32
	respond func(city string) (*domain.ProviderPayload, error)
}

func (m *mockProvider) CurrentWeather(_ context.Context, city string) (*domain.ProviderPayload, error) {
	m.calls.Add(1)
	return m.respond(city)
}

func (m *mockProvider) Name() string { return "openweathermap" }

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.Mode = gin.TestMode
	cfg.Provider.APIKey = "test-key"
	return cfg
}

func newTestServer(t *testing.T, provider service.WeatherService) *Server {
	t.Helper()
	return NewServer(testConfig(), provider, zaptest.NewLogger(t), &telemetry.Telemetry{})
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func londonProvider() *mockProvider {
	return &mockProvider{respond: func(string) (*domain.ProviderPayload, error) {
		return domain.ParsePayload([]byte(londonBody))
	}}
}

func TestServer_WeatherLondon(t *testing.T) {
	provider := londonProvider()
	s := newTestServer(t, provider)

	w := get(s, "/api/weather?city=london")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		`{"city":"London","temperature":15.2,"feels_like":14.8,"description":"cloudy","humidity":70,"wind_speed":3.1,"icon":"04d"}`,
		w.Body.String())
	assert.Equal(t, int32(1), provider.calls.Load())

	again := get(s, "/api/weather?city=london")
	assert.Equal(t, w.Body.Bytes(), again.Body.Bytes())
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestServer_WeatherMissingCityDoesNotCallProvider(t *testing.T) {
	provider := londonProvider()
	s := newTestServer(t, provider)

	w := get(s, "/api/weather?city=%20")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"city parameter is required"}`, w.Body.String())
	assert.Zero(t, provider.calls.Load())
}

func TestServer_WeatherFailures(t *testing.T) {
	tests := []struct {
		name     string
		respond  func(city string) (*domain.ProviderPayload, error)
		wantCode int
		wantBody string
	}{
		{
			name: "unknown city",
			respond: func(city string) (*domain.ProviderPayload, error) {
				return nil, fmt.Errorf("%w: %s", domain.ErrCityNotFound, city)
			},
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"city \"Nowhereville\" not found"}`,
		},
		{
			name: "timeout",
			respond: func(string) (*domain.ProviderPayload, error) {
				return nil, &domain.UpstreamError{Err: context.DeadlineExceeded}
			},
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"failed to fetch weather data from provider"}`,
		},
		{
			name: "missing main",
			respond: func(string) (*domain.ProviderPayload, error) {
				return domain.ParsePayload([]byte(`{"wind":{"speed":1},"weather":[{"description":"x","icon":"01d"}],"name":"X"}`))
			},
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"invalid data received from weather provider"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &mockProvider{respond: tt.respond})

			w := get(s, "/api/weather?city=Nowhereville")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestServer_WeatherAgainstStubProvider(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(londonBody))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Provider.BaseURL = upstream.URL
	cfg.Provider.Timeout = 20 * time.Millisecond

	logger := zaptest.NewLogger(t)
	provider := service.NewOpenWeatherMapServiceWithConfig(cfg.Provider, logger, nil)
	s := NewServer(cfg, provider, logger, nil)

	w := get(s, "/api/weather?city=London")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"failed to fetch weather data from provider"}`, w.Body.String())
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, londonProvider())

	w := get(s, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"ok"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(s, "/api/health/live").Code)
	assert.Equal(t, http.StatusOK, get(s, "/api/health/ready").Code)
}

func TestServer_Info(t *testing.T) {
	s := newTestServer(t, londonProvider())

	w := get(s, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"running"`)
	assert.Contains(t, w.Body.String(), `"provider":"openweathermap"`)
	assert.Contains(t, w.Body.String(), `"version":"2.0.0"`)
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t, londonProvider())

	w := get(s, "/api/forecast")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, w.Body.String())
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, londonProvider())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://frontend.test")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/weather", nil)
	preflight.Header.Set("Origin", "http://frontend.test")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, preflight)
	assert.Equal(t, http.StatusNoContent, w.Code)

	bare := httptest.NewRequest(http.MethodOptions, "/api/weather", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, bare)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	s := newTestServer(t, londonProvider())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, londonProvider())

	get(s, "/api/weather?city=London")
	get(s, "/api/weather?city=")

	w := get(s, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/weather",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/weather",status="400"} 1`)
	assert.Contains(t, body, `weather_provider_calls_total{provider="openweathermap",outcome="success"} 1`)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(t, londonProvider())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}
