package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// GetNotifications returns the acting user's notifications, newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid actor headers"})
		return
	}

	var list []model.Notification
	err := h.store.DB().WithContext(c.Request.Context()).
		Where("recipient_id = ?", actor.ID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read. Users may
// only mark their own notifications.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid actor headers"})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var notif model.Notification
	if err := db.First(&notif, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if notif.RecipientID != actor.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not your notification"})
		return
	}

	if err := db.Model(&notif).Update("read", true).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	notif.Read = true
	c.JSON(http.StatusOK, notif)
}
