package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/infrastructure/auth"
	"github.com/opsboard/backend/internal/infrastructure/logger"
	"github.com/opsboard/backend/internal/interfaces/http/dto"
)

// Auth context keys and headers
const (
	ClaimsKey     = "jwt_claims"
	ActorKey      = "actor"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	DevUserHeader = "X-User-ID"
)

// ActorResolver turns an authenticated user id into an authorization actor
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (identity.Actor, error)
}

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// JWTService validates bearer tokens
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// Actors resolves the token's user to its current role and location
	Actors ActorResolver
	// AllowDevHeader accepts X-User-ID in place of a token. Only honoured
	// outside production.
	AllowDevHeader bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultSkipPaths are reachable without credentials
var DefaultSkipPaths = []string{
	"/health",
	"/api/v1/health",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
}

// Authenticate identifies the caller and stores its actor in the context.
// The actor is always re-resolved from the user store so a deactivated
// user is rejected even with a valid token.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		userID, ok := authenticate(c, cfg)
		if !ok {
			return
		}

		actor, err := cfg.Actors.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			cfg.Logger.Warn("Authenticated user could not be resolved",
				zap.String("user_id", userID),
				zap.Error(err))
			abortAuth(c, dto.ErrCodeUnauthenticated, "User is unknown or inactive")
			return
		}

		c.Set(ActorKey, actor)
		c.Set(UserIDKey, actor.UserID)
		ctx := logger.WithActor(c.Request.Context(), logger.ActorFields{
			UserID:     actor.UserID,
			Role:       actor.Role.String(),
			LocationID: actor.LocationID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authenticate returns the caller's user id, or aborts the request
func authenticate(c *gin.Context, cfg AuthConfig) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if cfg.AllowDevHeader {
			if id := c.GetHeader(DevUserHeader); id != "" {
				return id, true
			}
		}
		abortAuth(c, dto.ErrCodeUnauthenticated, "Missing authorization header")
		return "", false
	}
	if !strings.HasPrefix(header, BearerPrefix) || strings.TrimPrefix(header, BearerPrefix) == "" {
		abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
		return "", false
	}

	claims, err := cfg.JWTService.ValidateAccessToken(strings.TrimPrefix(header, BearerPrefix))
	if err != nil {
		cfg.Logger.Debug("Token validation failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		if errors.Is(err, auth.ErrExpiredToken) {
			abortAuth(c, dto.ErrCodeTokenExpired, "Token has expired")
		} else {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid token")
		}
		return "", false
	}

	if cfg.TokenBlacklist != nil && claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		switch {
		case err != nil:
			// fail open
			cfg.Logger.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		case revoked:
			abortAuth(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
			return "", false
		}
	}

	c.Set(ClaimsKey, claims)
	return claims.UserID, true
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetActor returns the actor stored by Authenticate
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

// GetClaims returns the validated token claims, nil for dev header callers
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
