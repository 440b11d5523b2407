package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carestay-backend/internal/model"
)

// GetVAPIDPublicKey returns the VAPID public key and the sectors a client may
// subscribe to.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey, "sectors": model.Sectors})
}
