package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weatheria/weather-backend/internal/domain"
	"github.com/weatheria/weather-backend/internal/server/utils"
	"go.uber.org/zap"
)

const (
	msgUpstreamFailure  = "failed to fetch weather data from provider"
	msgMalformedPayload = "invalid data received from weather provider"
	msgInternalError    = "internal server error"
)

// WeatherLookup resolves a validated query to a normalized result.
type WeatherLookup interface {
	GetWeather(ctx context.Context, query domain.WeatherQuery) (*domain.WeatherResult, error)
}

type WeatherHandler struct {
	lookup WeatherLookup
	logger *zap.Logger
}

func NewWeatherHandler(lookup WeatherLookup, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		lookup: lookup,
		logger: logger,
	}
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var req WeatherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request parameters"})
		return
	}

	query, err := domain.NewWeatherQuery(req.City)
	if err != nil {
		reqLogger.Warn("Rejected weather request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	result, err := h.lookup.GetWeather(ctx, query)
	if err != nil {
		_ = c.Error(err)
		status, body := mapLookupError(err, query)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

func mapLookupError(err error, query domain.WeatherQuery) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)}
	case errors.Is(err, domain.ErrCityNotFound):
		return http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("city %q not found", query.City)}
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadGateway, ErrorResponse{Error: msgMalformedPayload}
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, ErrorResponse{Error: msgUpstreamFailure}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: msgInternalError}
	}
}

// validationMessage strips the sentinel prefix so the caller sees only the
// reason.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}
