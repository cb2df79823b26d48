package domain

import (
	"fmt"
	"strings"
)

// WeatherQuery is a validated inbound lookup. Build it with NewWeatherQuery.
type WeatherQuery struct {
	City string
}

func NewWeatherQuery(city string) (WeatherQuery, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return WeatherQuery{}, fmt.Errorf("%w: city parameter is required", ErrValidation)
	}
	return WeatherQuery{City: city}, nil
}

// WeatherResult is the stable response schema served to callers. Field order
// defines the JSON key order.
type WeatherResult struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
}
