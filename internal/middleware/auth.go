package middleware

import (
	"context"
	"net/http"
	"strings"

	"cajapos/internal/apierror"
	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

const ClaimsKey = "claims"

// TokenAuthenticator validates a raw bearer token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// JWTAuth validates the Bearer token on every protected route. Revoked
// tokens are rejected the same way as expired ones.
func JWTAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
