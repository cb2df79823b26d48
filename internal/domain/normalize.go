package domain

// Normalize maps a provider payload to a WeatherResult. It is pure: the same
// payload always yields the same result.
func Normalize(p *ProviderPayload) (WeatherResult, error) {
	if err := p.Validate(); err != nil {
		return WeatherResult{}, err
	}

	condition := p.Weather[0]

	return WeatherResult{
		City:        *p.Name,
		Temperature: *p.Main.Temp,
		FeelsLike:   *p.Main.FeelsLike,
		Description: *condition.Description,
		Humidity:    *p.Main.Humidity,
		WindSpeed:   *p.Wind.Speed,
		Icon:        *condition.Icon,
	}, nil
}
