package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/weatheria/weather-backend/internal/server/utils"
	"github.com/weatheria/weather-backend/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// RequestIDMiddleware reuses a client supplied X-Request-ID or generates one,
// echoes it in the response and stores it on both the gin and request contexts.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(utils.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
