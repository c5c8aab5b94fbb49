package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

// ErrorHandler logs errors attached to the context and answers for handlers
// that recorded an error without writing a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			event := log.Warn()
			if appErr, ok := apperrors.As(e.Err); !ok || appErr.StatusCode() >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
