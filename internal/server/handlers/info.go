package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type InfoHandler struct {
	info InfoResponse
}

func NewInfoHandler(service, version, provider string) *InfoHandler {
	return &InfoHandler{
		info: InfoResponse{
			Service:  service,
			Version:  version,
			Provider: provider,
			Status:   "running",
			Endpoints: map[string]string{
				"/":                 "Service information",
				"/api/health":       "Health check",
				"/api/health/live":  "Liveness probe",
				"/api/health/ready": "Readiness probe",
				"/api/weather":      "Current weather for a city (?city=<name>)",
				"/metrics":          "Prometheus metrics",
			},
		},
	}
}

func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
