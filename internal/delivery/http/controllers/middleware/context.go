package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ClientIDCtx = "client_id"

// ClientID returns the resolved caller, or uuid.Nil when the request carries
// no valid identity.
func ClientID(c *gin.Context) uuid.UUID {
	raw, ok := c.Get(ClientIDCtx)
	if !ok {
		return uuid.Nil
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
