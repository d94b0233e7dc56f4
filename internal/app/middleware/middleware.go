package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

// Typed context keys
type contextKey string

const ActorContextKey contextKey = "actor"

// CORSMiddleware handles CORS headers for the JSON API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers.
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// TokenValidator verifies a signed access token. Implemented by the auth
// service; kept as an interface here to avoid a package cycle.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.Claims, error)
}

// RoleResolver resolves the stored role for a user id. The role embedded in
// a token is never trusted on its own; the profile is the source of truth.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (roles.Role, error)
}

// AuthMiddleware validates the bearer token and attaches the acting
// identity to the request context. Requests without a valid token are
// rejected.
func AuthMiddleware(authSvc TokenValidator, resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := resolveActor(c, authSvc, resolver)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(string(ActorContextKey), actor)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the acting identity when a valid token is
// present, and lets anonymous requests through as viewers.
func OptionalAuthMiddleware(authSvc TokenValidator, resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := resolveActor(c, authSvc, resolver); ok {
			c.Set(string(ActorContextKey), actor)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose actor ranks below the
// given role. Must run after AuthMiddleware.
func RequireRole(min roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActorFromContext(c)
		if !actor.Role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

func resolveActor(c *gin.Context, authSvc TokenValidator, resolver RoleResolver) (roles.Actor, bool) {
	token := bearerToken(c)
	if token == "" {
		return roles.Actor{}, false
	}

	claims, err := authSvc.ValidateToken(token)
	if err != nil {
		return roles.Actor{}, false
	}

	role := roles.RoleViewer
	if resolver != nil {
		if resolved, err := resolver.RoleOf(c.Request.Context(), claims.UserID); err == nil {
			role = resolved
		}
	}

	return roles.Actor{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	// Browser clients send the token as a cookie instead.
	if token, err := c.Cookie("auth_token"); err == nil {
		return token
	}
	return ""
}

// GetActorFromContext extracts the acting identity. Anonymous requests
// resolve to a zero-id viewer.
func GetActorFromContext(c *gin.Context) roles.Actor {
	if v, exists := c.Get(string(ActorContextKey)); exists {
		if actor, ok := v.(roles.Actor); ok {
			return actor
		}
	}
	return roles.Actor{Role: roles.RoleViewer}
}
