package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"quizportal/models"
	"quizportal/services"

	"github.com/gin-gonic/gin"
)

// UserFinder is satisfied by *services.AuthService.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAdmin lets through callers whose account has the admin role. It
// must run after AuthMiddleware.
func RequireAdmin(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "User not authenticated")
				return
			}
			log.Printf("admin check for %s: %v", userID, err)
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
