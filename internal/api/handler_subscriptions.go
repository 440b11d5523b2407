package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carestay-backend/internal/model"
	"carestay-backend/internal/notification"
)

type putSubscriptionRequest struct {
	Endpoint string         `json:"endpoint" binding:"required"`
	P256DH   string         `json:"p256dh" binding:"required"`
	Auth     string         `json:"auth" binding:"required"`
	Sectors  []model.Sector `json:"sectors" binding:"dive,sector"`
}

func (h *Handler) requireDB(c *gin.Context) bool {
	if h.db == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return false
	}
	return true
}

// PutSubscription creates or replaces a subscription and the sectors it
// wants vacancy alerts for.
func (h *Handler) PutSubscription(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		if err := tx.Where("endpoint = ?", req.Endpoint).Delete(&model.SubscriptionSector{}).Error; err != nil {
			return err
		}

		seen := make(map[model.Sector]bool, len(req.Sectors))
		rows := make([]model.SubscriptionSector, 0, len(req.Sectors))
		for _, s := range req.Sectors {
			if seen[s] {
				continue
			}
			seen[s] = true
			rows = append(rows, model.SubscriptionSector{Endpoint: req.Endpoint, Sector: s})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.Error("failed to save subscription", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := notification.DeleteSubscription(h.db.WithContext(c.Request.Context()), req.Endpoint); err != nil {
		h.log.Error("failed to delete subscription", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns a query value without URL decoding. Push endpoints
// are URLs themselves and clients send them unescaped.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the sectors a subscription is registered for.
func (h *Handler) GetSubscription(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	if err := h.db.WithContext(c.Request.Context()).Preload("Sectors").First(&subscription, "endpoint = ?", raw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "subscription")
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	sectors := make([]model.Sector, len(subscription.Sectors))
	for i, s := range subscription.Sectors {
		sectors[i] = s.Sector
	}

	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}
