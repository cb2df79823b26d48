package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/internal/service"
	"github.com/weatheria/weather-backend/internal/weather"
)

func newFetchCmd(a *app) *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Look up the current weather for a city once and print it",
		Example: `  weather fetch --city London
  weather fetch --city "New York" --config ./config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := domain.NewWeatherQuery(city)
			if err != nil {
				return err
			}

			provider := service.NewOpenWeatherMapServiceWithConfig(a.cfg.Provider, a.log.Logger, a.tele)
			svc := weather.NewService(provider, a.log.Logger, a.tele)

			result, err := svc.GetWeather(cmd.Context(), query)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city name to look up")
	_ = cmd.MarkFlagRequired("city")

	return cmd
}
