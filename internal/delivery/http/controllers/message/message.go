package message

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/delivery/http/controllers/middleware"
	"RoleChat/internal/delivery/http/controllers/respond"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.MessageView, error)
	Send(ctx context.Context, userID uuid.UUID, body string) error
	Delete(ctx context.Context, userID, messageID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, query string) ([]models.MessageView, error)
}

type MessageHandler struct {
	log     logger.Log
	service MessageService
}

func NewMessageHandler(l logger.Log, s MessageService) *MessageHandler {
	return &MessageHandler{
		log:     l,
		service: s,
	}
}

type messageResponse struct {
	ID         string `json:"id"`
	Body       string `json:"body"`
	Author     string `json:"author"`
	AuthorName string `json:"authorName"`
	CreatedAt  string `json:"createdAt"`
}

func toResponse(views []models.MessageView) []messageResponse {
	resp := make([]messageResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, messageResponse{
			ID:         v.ID.String(),
			Body:       v.Body,
			Author:     v.UserID.String(),
			AuthorName: v.Author,
			CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return resp
}

func (h *MessageHandler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": toResponse(views)})
}

// body is a pointer so that an empty string is accepted while a missing
// field is not.
type sendRequest struct {
	Body *string `json:"body" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var input sendRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Send(c.Request.Context(), middleware.ClientID(c), *input.Body); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		respond.Error(c, app_errors.ErrInvalidMessageID)
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ClientID(c), messageID); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) Search(c *gin.Context) {
	views, err := h.service.Search(c.Request.Context(), middleware.ClientID(c), c.Query("q"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": toResponse(views)})
}
