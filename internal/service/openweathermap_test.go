package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weatheria/weather-backend/internal/config"
	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const londonBody = `{"main":{"temp":15.2,"feels_like":14.8,"humidity":70},"wind":{"speed":3.1},"weather":[{"description":"cloudy","icon":"04d"}],"name":"London"}`

func newTestService(t *testing.T, baseURL string, timeout time.Duration) *OpenWeatherMapService {
	t.Helper()
	cfg := config.ProviderConfig{
		Name:    "openweathermap",
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: timeout,
	}
	return NewOpenWeatherMapServiceWithConfig(cfg, zaptest.NewLogger(t), &telemetry.Telemetry{})
}

func TestOpenWeatherMapService_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL+"/data/2.5/", 5*time.Second)

	payload, err := svc.CurrentWeather(context.Background(), "London")
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, "London", *payload.Name)
	assert.Equal(t, 15.2, *payload.Main.Temp)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "openweathermap", svc.Name())
}

func TestOpenWeatherMapService_EncodesCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "São Paulo&x=1", r.URL.Query().Get("q"))
		assert.Empty(t, r.URL.Query().Get("x"))
		_, _ = w.Write([]byte(londonBody))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, 5*time.Second)

	_, err := svc.CurrentWeather(context.Background(), "São Paulo&x=1")
	require.NoError(t, err)
}

func TestOpenWeatherMapService_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus int
	}{
		{
			name:    "city not found",
			status:  http.StatusNotFound,
			body:    `{"cod":"404","message":"city not found"}`,
			wantErr: domain.ErrCityNotFound,
		},
		{
			name:       "invalid api key",
			status:     http.StatusUnauthorized,
			body:       `{"cod":401,"message":"Invalid API key"}`,
			wantErr:    domain.ErrUpstream,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider outage",
			status:     http.StatusServiceUnavailable,
			body:       `upstream unavailable`,
			wantErr:    domain.ErrUpstream,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:    "undecodable body",
			status:  http.StatusOK,
			body:    `not-json`,
			wantErr: domain.ErrMalformedPayload,
		},
		{
			name:    "missing main",
			status:  http.StatusOK,
			body:    `{"wind":{"speed":3.1},"weather":[{"description":"cloudy","icon":"04d"}],"name":"London"}`,
			wantErr: domain.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := newTestService(t, srv.URL, 5*time.Second)

			payload, err := svc.CurrentWeather(context.Background(), "Atlantis")
			require.Error(t, err)
			assert.Nil(t, payload)
			assert.ErrorIs(t, err, tt.wantErr)

			if tt.wantStatus != 0 {
				var upstream *domain.UpstreamError
				require.True(t, errors.As(err, &upstream))
				assert.Equal(t, tt.wantStatus, upstream.StatusCode)
			}
		})
	}
}

func TestOpenWeatherMapService_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	svc := newTestService(t, srv.URL, 50*time.Millisecond)

	_, err := svc.CurrentWeather(context.Background(), "London")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.StatusCode)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestOpenWeatherMapService_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := newTestService(t, url, time.Second)

	_, err := svc.CurrentWeather(context.Background(), "London")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestOpenWeatherMapService_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.CurrentWeather(ctx, "London")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
