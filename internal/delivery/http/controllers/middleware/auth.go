package middleware

import (
	"RoleChat/internal/app_errors"
	"RoleChat/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService interface {
	ParseToken(ctx context.Context, token string) (*jwt.Token, error)
	IsAccessToken(ctx context.Context, token *jwt.Token) bool
	AccessClaims(ctx context.Context, token string) (uuid.UUID, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func bearerToken(c *gin.Context) string {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *AuthMiddlewareProvider) resolve(c *gin.Context, token string) (uuid.UUID, error) {
	parsedToken, err := h.service.ParseToken(c.Request.Context(), token)
	if err != nil {
		return uuid.Nil, err
	}
	if !h.service.IsAccessToken(c.Request.Context(), parsedToken) {
		return uuid.Nil, app_errors.ErrInvalidToken
	}
	return h.service.AccessClaims(c.Request.Context(), token)
}

// AuthMiddleware rejects requests without a valid access token.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotSignedIn.Error()})
		return
	}

	userID, err := h.resolve(c, token)
	if err != nil {
		h.log.Debug("failed to resolve identity", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotSignedIn.Error()})
		return
	}

	c.Set(ClientIDCtx, userID)
	c.Next()
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (h *AuthMiddlewareProvider) OptionalAuth(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if userID, err := h.resolve(c, token); err == nil {
			c.Set(ClientIDCtx, userID)
		}
	}
	c.Next()
}
