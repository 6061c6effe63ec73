package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"RxClinic/models"
	"RxClinic/utils"

	"github.com/gin-gonic/gin"
)

type contextKey string

const actorKey contextKey = "actor"

var ErrNoActor = errors.New("authenticated user not found in context")

// bearerToken reads the access token from the Authorization header, the
// accessToken query parameter or the accessToken cookie, in that order.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token := c.Query("accessToken"); token != "" {
		return token
	}
	if token, err := c.Cookie(utils.AccessTokenCookie); err == nil {
		return token
	}
	return ""
}

// TokenAuthMiddleware validates the access token and stores the acting user
// in the request context.
func TokenAuthMiddleware(tokens *utils.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			return
		}

		claims, err := tokens.ValidateToken(token, models.UserTypes...)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		actor := models.Actor{ID: claims.UserID, Role: claims.Role}
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RoleAuthMiddleware restricts access to users holding one of roles.
func RoleAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := ActorFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User role not found in context"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
	}
}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the user set by TokenAuthMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, error) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	if !ok {
		return models.Actor{}, ErrNoActor
	}
	return actor, nil
}
