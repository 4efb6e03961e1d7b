// Package middleware provides the gin middleware of the bayesbench API.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/YuminosukeSato/bayesbench/internal/api/handler"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(handler.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// Logger writes one access log entry per request. 4xx responses are logged
// at Warn, 5xx at Error.
func Logger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			log.RequestIDKey, c.GetString(handler.RequestIDKey),
			log.MethodKey, c.Request.Method,
			log.RouteKey, route(c),
			log.StatusCodeKey, status,
			log.ClientIPKey, c.ClientIP(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				fields = append([]any{c.Errors.Last().Err}, fields...)
			}
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request completed", fields...)
		}
	}
}

// Recovery turns a panic in a handler into a PanicError log entry and a 500
// envelope.
func Recovery(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				pe := errors.NewPanicError(c.Request.Method+" "+route(c), r)
				logger.Error("Panic recovered", pe,
					log.RequestIDKey, c.GetString(handler.RequestIDKey),
					log.StacktraceKey, pe.StackTrace,
				)
				handler.RespondError(c, http.StatusInternalServerError, handler.CodeInternal, "internal server error")
			}
		}()
		c.Next()
	}
}

// route returns the matched route pattern, or "unmatched" for 404s so that
// arbitrary paths do not become metric labels.
func route(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
