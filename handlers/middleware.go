package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"aurora-backend/models"
	"aurora-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userContextKey is where the authenticated user lives on the gin context
const userContextKey = "currentUser"

// bearerPrefix is the only accepted Authorization scheme
const bearerPrefix = "Bearer "

// TokenVerifier checks a session token and returns the embedded user ID.
// Implemented by service.TokenService.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// UserLoader fetches the account a verified token refers to.
// Implemented by repository.UserRepository.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAuth validates the bearer token on the request, loads the
// referenced user and attaches it to the context. Every way this can fail is
// a 401; even unexpected internal errors surface as 401 here, never 500,
// since the client's remedy is the same either way: authenticate again.
func RequireAuth(tokens TokenVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "AUTH_HEADER_REQUIRED", "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abortUnauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format")
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token == "" {
			abortUnauthorized(c, "TOKEN_NOT_FOUND", "Token not found")
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				abortUnauthorized(c, "TOKEN_EXPIRED", "Token expired")
			case errors.Is(err, service.ErrTokenInvalid):
				abortUnauthorized(c, "INVALID_TOKEN", "Invalid token signature")
			default:
				log.Printf("Authentication error: %v", err)
				abortUnauthorized(c, "AUTH_FAILED", "Authentication failed")
			}
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				abortUnauthorized(c, "USER_NOT_FOUND", "User associated with token not found")
				return
			}
			log.Printf("Authentication error loading user %s: %v", userID, err)
			abortUnauthorized(c, "AUTH_FAILED", "Authentication failed")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth. Handlers registered
// behind the middleware can rely on it being present.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
