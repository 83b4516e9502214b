package auth

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/delivery/http/controllers/middleware"
	"RoleChat/internal/delivery/http/controllers/respond"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	RequestLink(ctx context.Context, email string) error
	ConsumeLink(ctx context.Context, token string) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
}

type AvatarService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
}

type AuthHandler struct {
	service AuthService
	avatars AvatarService
	log     logger.Log
}

// NewAuthHandler builds the handler. avatars may be nil, in which case avatar
// uploads report the feature as disabled.
func NewAuthHandler(l logger.Log, auth AuthService, avatars AvatarService) *AuthHandler {
	return &AuthHandler{
		service: auth,
		avatars: avatars,
		log:     l,
	}
}

type emailLinkRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *AuthHandler) RequestLink(c *gin.Context) {
	var input emailLinkRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RequestLink(c.Request.Context(), input.Email); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "sign-in link sent"})
}

type verifyLinkRequest struct {
	Token string `json:"token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func writeTokens(c *gin.Context, pair *models.TokenPair) {
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken.Raw,
		RefreshToken: pair.RefreshToken.Raw,
	})
}

func (h *AuthHandler) VerifyLink(c *gin.Context) {
	var input verifyLinkRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.service.ConsumeLink(c.Request.Context(), input.Token)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeTokens(c, pair)
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(c, err)
		return
	}
	writeTokens(c, pair)
}

type meResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Me renders the caller's record, or null for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetMe(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	resp := meResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if h.avatars != nil && user.Image != "" {
		url, err := h.avatars.URL(c.Request.Context(), user.Image)
		if err != nil {
			h.log.ErrorErr("failed to presign avatar", err, "user_id", user.ID)
		} else {
			resp.Image = url
		}
	}
	c.JSON(http.StatusOK, resp)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AuthHandler) UpdateRole(c *gin.Context) {
	var input updateRoleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateRole(c.Request.Context(), middleware.ClientID(c), input.Role); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	if h.avatars == nil {
		respond.Error(c, app_errors.ErrFeatureDisabled)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	url, err := h.avatars.Upload(
		c.Request.Context(),
		middleware.ClientID(c),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": url})
}
