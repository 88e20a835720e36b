package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paw-chain/pawswap/app/telemetry"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	// MaxRequestSize is the default body limit (1 MiB).
	MaxRequestSize int64 = 1 << 20

	contextKeyRequestID = "request_id"
)

// RateLimitMiddleware rejects requests over the endpoint or per-IP budget.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, headers, message := rl.CheckLimit(c.ClientIP(), c.Request.Method, c.Request.URL.Path)
		if headers != nil {
			for k, v := range headers.ToHeaders() {
				c.Header(k, v)
			}
		}
		if !allowed {
			if message == "" {
				message = "Rate limit exceeded"
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:     message,
				Code:      "RATE_LIMIT",
				Retryable: true,
			})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(contextKeyRequestID),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", append(kv, "errors", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			logger.Info("request rejected", kv...)
		default:
			logger.Debug("request served", kv...)
		}
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", "panic", fmt.Sprint(err), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal server error",
					Code:  "INTERNAL_ERROR",
				})
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextKeyRequestID, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// TracingMiddleware opens a server span per request.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := telemetry.StartRequestSpan(c.Request.Context(), c.Request.Method, route, c.GetString(contextKeyRequestID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		} else if c.Writer.Status() >= http.StatusInternalServerError {
			err = fmt.Errorf("status %s", strconv.Itoa(c.Writer.Status()))
		}
		telemetry.EndSpan(span, err)
	}
}

// RequestSizeLimitMiddleware caps the request body at maxBytes.
func RequestSizeLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
				Code:  "REQUEST_TOO_LARGE",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// TimeoutMiddleware attaches a deadline to the request context. Keeper calls
// observe it through ctx; the handler itself runs on the request goroutine.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
