package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eduplay-service/internal/auth"
	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

const (
	ctxAccountID  = "accountID"
	ctxRequestID  = "requestID"
	bearerPrefix  = "Bearer "
	requestHeader = "X-Request-ID"
)

// RequestLogger tags every request with an id, echoes it in the
// X-Request-ID header, and logs method, route, status, and duration at a
// level matching the status class.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(ctxRequestID, requestID)
		c.Writer.Header().Set(requestHeader, requestID)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

// CORS permits the local dev frontends with credentials.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{requestHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// AuthMiddleware gates route groups on a verified bearer token of the
// expected account kind.
type AuthMiddleware struct {
	tokens *auth.TokenManager
}

func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Require aborts with 401 when the token is missing or invalid and 403
// when it belongs to the other account kind. On success the account id is
// stored on the context for handlers.
func (m *AuthMiddleware) Require(kind domain.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorEnvelope{Error: APIError{
				Message: "missing bearer token", Code: "unauthorized",
			}})
			return
		}
		id, tokenKind, err := m.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorEnvelope{Error: APIError{
				Message: auth.ErrInvalidToken.Error(), Code: "unauthorized",
			}})
			return
		}
		if tokenKind != kind {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorEnvelope{Error: APIError{
				Message: "wrong account kind for this route", Code: "forbidden",
			}})
			return
		}
		c.Set(ctxAccountID, id)
		c.Next()
	}
}

// extractToken prefers the Authorization header but falls back to a token
// query parameter, which browser websocket clients need since they cannot
// set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return header[len(bearerPrefix):]
	}
	return c.Query("token")
}

// accountID returns the authenticated account id stored by Require.
func accountID(c *gin.Context) int64 {
	return c.GetInt64(ctxAccountID)
}
