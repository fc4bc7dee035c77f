package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/response"
	"github.com/xiebiao/library/pkg/tracing"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped zerolog logger and writes one
// access log line per request. Register it after Tracing so the trace id is
// known.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := c.Request.Context()
		lc := logger.FromContext(ctx).With().Str("request_id", requestID)
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			lc = lc.Str("trace_id", traceID)
		}
		l := lc.Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx, l))

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.FromContext(c.Request.Context()).Error()
		case status >= 400:
			event = logger.FromContext(c.Request.Context()).Warn()
		default:
			event = logger.FromContext(c.Request.Context()).Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery turns a panic into a 500 reply and logs the panic value.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.FromContext(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
