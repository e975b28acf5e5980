package middleware

import (
	"net/http"
	"strings"

	"dinein/internal/domain"
	"dinein/internal/pkg/jwt"
	"dinein/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth requires a valid staff bearer token and stores the user id and
// role on the context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, string(role))
		c.Next()
	}
}

// ActorFrom reads the identity JWTAuth stored. It is the zero Actor on
// public routes.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetInt64(ctxUserID),
		Role:   domain.UserRole(c.GetString(ctxRole)),
	}
}
