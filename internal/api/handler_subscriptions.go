package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"hotel-marketplace-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers or refreshes the merchant's browser push
// subscription for moderation decision notifications.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	subscription := model.PushSubscription{
		Endpoint:   req.Endpoint,
		MerchantID: CurrentActor(c).ID,
		P256DH:     req.P256DH,
		Auth:       req.Auth,
	}

	if err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"merchant_id", "p256dh", "auth"}),
	}).Create(&subscription).Error; err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the merchant's push subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if err := h.store.DB().
		Where("endpoint = ? AND merchant_id = ?", req.Endpoint, CurrentActor(c).ID).
		Delete(&model.PushSubscription{}).Error; err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{})
}

// GetSubscriptions lists the merchant's registered push endpoints.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	var subs []model.PushSubscription
	if err := h.store.DB().
		Where("merchant_id = ?", CurrentActor(c).ID).
		Find(&subs).Error; err != nil {
		respondError(c, err)
		return
	}

	endpoints := make([]string, len(subs))
	for i, sub := range subs {
		endpoints[i] = sub.Endpoint
	}
	respond(c, http.StatusOK, gin.H{"endpoints": endpoints})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "push notifications are not configured"})
		return
	}
	respond(c, http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
