package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/weatheria/weather-backend/internal/validation"
)

var ErrMissingAPIKey = errors.New("provider API key is not configured (set OPENWEATHERMAP_API_KEY)")

type Config struct {
	Version     string          `mapstructure:"version" validate:"required"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Provider    ProviderConfig  `mapstructure:"provider"`
	CORS        CORSConfig      `mapstructure:"cors"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host            string        `mapstructure:"host"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// ProviderConfig configures the OpenWeatherMap client. Units are always metric.
type ProviderConfig struct {
	Name    string        `mapstructure:"name" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "2.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Provider: ProviderConfig{
			Name:    "openweathermap",
			BaseURL: "https://api.openweathermap.org/data/2.5",
			APIKey:  "",
			Timeout: 10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-backend",
		},
	}
}

// Validate checks the loaded configuration. A missing provider key is reported
// as ErrMissingAPIKey so the process refuses to start.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return ErrMissingAPIKey
	}

	if errs := validation.ValidateStruct(c); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", validation.Join(errs))
	}

	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
