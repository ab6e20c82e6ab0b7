package handlers

import (
	"net/http"

	"hypoforum/internal/errs"
	"hypoforum/internal/middleware"
	"hypoforum/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const notificationPageSize = 50

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(gdb *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: gdb}
}

// List GET /api/notifications?unread=1&page=
func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)
	p := page(c)

	q := h.db.WithContext(c.Request.Context()).Where("recipient_id = ?", user.ID)
	if c.Query("unread") == "1" {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	err := q.Preload("Sender").
		Order("created_at DESC, id DESC").
		Offset((p - 1) * notificationPageSize).
		Limit(notificationPageSize).
		Find(&notifications).Error
	if err != nil {
		RenderError(c, errs.Storage(err))
		return
	}

	unread, _ := c.Get(middleware.UnreadCountKey)
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
		"page":          p,
	})
}

// Read POST /api/notifications/:id/read
func (h *NotificationHandler) Read(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, currentUser(c).ID).
		Update("is_read", true)
	if res.Error != nil {
		RenderError(c, errs.Storage(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		RenderError(c, errs.ErrNotificationGone)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadAll POST /api/notifications/read-all
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	res := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", currentUser(c).ID, false).
		Update("is_read", true)
	if res.Error != nil {
		RenderError(c, errs.Storage(res.Error))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}

// Delete DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND recipient_id = ?", id, currentUser(c).ID).
		Delete(&models.Notification{})
	if res.Error != nil {
		RenderError(c, errs.Storage(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		RenderError(c, errs.ErrNotificationGone)
		return
	}
	c.Status(http.StatusNoContent)
}
