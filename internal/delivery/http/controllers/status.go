package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	startedAt time.Time
}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{startedAt: time.Now()}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "Available",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}
