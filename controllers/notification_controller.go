package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GET /api/notifications/?unread=true
func (ctl *NotificationController) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := ctl.notifications.List(c.Request.Context(), u.ID, c.Query("unread") == "true")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/notifications/unread-count/
func (ctl *NotificationController) UnreadCount(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := ctl.notifications.UnreadCount(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// PUT /api/notifications/:id/read/
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctl.notifications.MarkRead(c.Request.Context(), u.ID, id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PUT /api/notifications/read-all/
func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := ctl.notifications.MarkAllRead(c.Request.Context(), u.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
