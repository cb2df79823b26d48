package service

import (
	"context"

	"github.com/weatheria/weather-backend/internal/domain"
)

// WeatherService fetches current conditions for a city from an external
// provider. Implementations make exactly one outbound call per invocation.
type WeatherService interface {
	CurrentWeather(ctx context.Context, city string) (*domain.ProviderPayload, error)
	Name() string
}
