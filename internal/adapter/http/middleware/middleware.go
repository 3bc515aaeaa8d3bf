package middleware

import (
	"net/http"
	"time"

	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"
	"sweeps-casino/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// CtxOwnerID is the context key for the authenticated player id.
	CtxOwnerID = "owner_id"
)

// JWTAuth creates a middleware that validates bearer tokens issued by the
// platform's identity service and stores the owner id on the context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		ownerID, err := tokenSvc.Validate(authHeader[7:])
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxOwnerID, ownerID)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize limits the request body to n bytes.
func MaxBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
