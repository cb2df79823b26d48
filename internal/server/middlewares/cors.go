package middlewares

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weatheria/weather-backend/internal/config"
)

// CORSMiddleware allows browser clients on the configured origins to call the
// API. A "*" entry allows every origin.
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(corsCfg)
}
