package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/pulsenet-backend/internal/http/response"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

const AdminRole = "admin"

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignAdminToken issues an HS256 admin bearer token.
func SignAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin secret not configured")
	}
	now := time.Now()
	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type AdminAuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAdminAuthMiddleware(log *logger.Logger, secret string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{log: log.With("Middleware", "AdminAuthMiddleware"), secret: []byte(secret)}
}

// RequireAdmin rejects requests without a valid admin bearer token. With no
// secret configured every request is rejected.
func (am *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(am.secret) == 0 {
			response.RespondErrorDetails(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - admin access not configured", "")
			c.Abort()
			return
		}
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.RespondErrorDetails(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - missing bearer token", "")
			c.Abort()
			return
		}
		claims := &AdminClaims{}
		parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return am.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			am.log.Warn("admin token rejected", "error", err)
			response.RespondErrorDetails(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - invalid admin token", "")
			c.Abort()
			return
		}
		if claims.Role != AdminRole {
			response.RespondErrorDetails(c, http.StatusForbidden, "FORBIDDEN", "Forbidden", "")
			c.Abort()
			return
		}
		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
