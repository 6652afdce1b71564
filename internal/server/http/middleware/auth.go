package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/server/http/dto"
)

const (
	// ClaimsContextKey is a gin context key for the authenticated token claims.
	ClaimsContextKey = "claims"
	authCookieName   = "rigshop_token"
)

// TokenParser validates auth tokens.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*pkgAuth.Claims, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return authenticate(parser, true)
}

// AuthOptional authenticates the caller when a token is present and lets
// guests through otherwise.
func AuthOptional(parser TokenParser) gin.HandlerFunc {
	return authenticate(parser, false)
}

func authenticate(parser TokenParser, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			if required {
				abortUnauthorized(c)
				return
			}
			c.Next()
			return
		}

		claims, err := parser.ParseToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abortUnauthorized(c)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "internal",
				Message: "internal server error",
			})
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "unauthorized",
		Message: "authentication required",
	})
}

// CurrentClaims returns the claims of the authenticated caller, or nil.
func CurrentClaims(c *gin.Context) *pkgAuth.Claims {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := val.(*pkgAuth.Claims)
	return claims
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearAuthCookie expires the auth token cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
}
