package handlers

// WeatherRequest carries the raw city query parameter. Trimming and the
// emptiness check happen in domain.NewWeatherQuery.
type WeatherRequest struct {
	City string `form:"city" json:"city"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type InfoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Provider  string            `json:"provider"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}
