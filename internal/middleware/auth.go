package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextSubject and ContextRole are the gin keys set by RequireAuth.
	ContextSubject = "subject"
	ContextRole    = "role"
)

var (
	ErrMissingToken = errors.New("authorization is missing")
	ErrTokenFormat  = errors.New("invalid authorization format, expected 'Bearer <token>'")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenFromRequest reads the access_token cookie, falling back to the
// Authorization header.
func TokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrTokenFormat
	}
	return parts[1], nil
}

// ParseToken validates an HMAC-signed JWT and returns its claims.
func ParseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAuth validates the JWT and, when roles are given, checks that the
// token's role claim is one of them.
func RequireAuth(secret []byte, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		role, _ := claims["role"].(string)
		if len(roles) > 0 && !contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextSubject, claims["sub"])
		c.Set(ContextRole, role)
		c.Next()
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
