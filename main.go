package main

import (
	"os"

	"github.com/weatheria/weather-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
