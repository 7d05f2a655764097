package middleware

import (
	"context"
	"net/http"
	"strings"

	"quizportal/services"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the name of the cookie carrying the session token.
const TokenCookie = "token"

const userIDKey = "user_id"

type contextKey struct{}

// TokenVerifier is satisfied by *services.TokenService.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware requires a valid session token, taken from the token cookie
// or an Authorization: Bearer header, and stores the caller's id.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := requestToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), contextKey{}, userID))
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// UserIDFromContext reads the caller's id from a request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

var _ TokenVerifier = (*services.TokenService)(nil)
