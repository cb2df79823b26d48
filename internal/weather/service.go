package weather

import (
	"context"
	"errors"

	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/internal/service"
	"github.com/weatheria/weather-backend/pkg/logger"
	"github.com/weatheria/weather-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Provider call outcomes reported to the MetricsRecorder.
const (
	OutcomeSuccess   = "success"
	OutcomeNotFound  = "not_found"
	OutcomeUpstream  = "upstream_error"
	OutcomeMalformed = "malformed_payload"
)

// MetricsRecorder receives one observation per provider call.
type MetricsRecorder interface {
	RecordProviderCall(ctx context.Context, provider, outcome string)
}

// Service answers weather lookups by calling the provider exactly once and
// normalizing its payload. It holds no state between requests.
type Service struct {
	provider service.WeatherService
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  MetricsRecorder
}

func NewService(provider service.WeatherService, logger *zap.Logger, tele *telemetry.Telemetry) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
		tele:     tele,
	}
}

func (s *Service) SetMetricsRecorder(metrics MetricsRecorder) {
	s.metrics = metrics
}

func (s *Service) ProviderName() string {
	return s.provider.Name()
}

func (s *Service) GetWeather(ctx context.Context, query domain.WeatherQuery) (*domain.WeatherResult, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.GetWeather")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", query.City),
		attribute.String("provider", s.provider.Name()),
	)

	reqLogger := logger.ForContext(ctx, s.logger).With(zap.String("city", query.City))
	reqLogger.Debug("Weather data requested")

	payload, err := s.provider.CurrentWeather(ctx, query.City)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		s.record(ctx, outcomeFor(err))
		s.logFailure(reqLogger, err)
		return nil, err
	}

	result, err := domain.Normalize(payload)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		s.record(ctx, OutcomeMalformed)
		s.logFailure(reqLogger, err)
		return nil, err
	}

	s.record(ctx, OutcomeSuccess)
	span.SetAttributes(attribute.Bool("success", true))
	reqLogger.Info("Weather data fetched",
		zap.Float64("temperature", result.Temperature),
		zap.String("description", result.Description))

	return &result, nil
}

func (s *Service) record(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordProviderCall(ctx, s.provider.Name(), outcome)
	}
}

func (s *Service) logFailure(l *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrCityNotFound):
		l.Info("City not found by provider")
	case errors.Is(err, domain.ErrMalformedPayload):
		l.Warn("Provider returned malformed payload", zap.Error(err))
	default:
		l.Error("Failed to fetch weather data", zap.Error(err))
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrCityNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrMalformedPayload):
		return OutcomeMalformed
	default:
		return OutcomeUpstream
	}
}
