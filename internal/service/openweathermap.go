package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/weatheria/weather-backend/internal/config"
	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

type OpenWeatherMapService struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

func NewOpenWeatherMapServiceWithConfig(cfg config.ProviderConfig, logger *zap.Logger, tele *telemetry.Telemetry) *OpenWeatherMapService {
	return &OpenWeatherMapService{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With(zap.String("provider", cfg.Name)),
		tele:   tele,
	}
}

func (s *OpenWeatherMapService) Name() string {
	return s.name
}

// CurrentWeather calls {base}/weather?q=<city>&appid=<key>&units=metric once.
// A provider 404 maps to domain.ErrCityNotFound, a 200 with a bad body to
// *domain.MalformedPayloadError and everything else to *domain.UpstreamError.
func (s *OpenWeatherMapService) CurrentWeather(ctx context.Context, city string) (*domain.ProviderPayload, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.CurrentWeather")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", city),
		attribute.String("service", s.name),
	)

	u, err := url.Parse(s.baseURL + "/weather")
	if err != nil {
		return nil, fmt.Errorf("invalid provider base url: %w", err)
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("Fetching current weather", zap.String("city", city))

	resp, err := s.client.Do(req)
	if err != nil {
		// url.Error carries the full URL including appid.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		upstream := &domain.UpstreamError{Err: err}
		s.tele.RecordError(ctx, upstream)
		return nil, upstream
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrCityNotFound, city)
	case resp.StatusCode != http.StatusOK:
		upstream := &domain.UpstreamError{StatusCode: resp.StatusCode}
		s.tele.RecordError(ctx, upstream)
		return nil, upstream
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		upstream := &domain.UpstreamError{StatusCode: resp.StatusCode, Err: err}
		s.tele.RecordError(ctx, upstream)
		return nil, upstream
	}

	payload, err := domain.ParsePayload(body)
	if err != nil {
		s.tele.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return payload, nil
}
