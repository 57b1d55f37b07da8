package controller

import (
	"net/http"
	"voluntariado-backend/models"
	"voluntariado-backend/services"
	"voluntariado-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	handler
	notificationService services.NotificationServiceInterface
}

func NewNotificationController(svc services.ServiceContainerInterface, logger logger.Logger) *NotificationController {
	return &NotificationController{
		handler:             newHandler(logger),
		notificationService: svc.GetNotificationService(),
	}
}

// GetNotifications handles GET /api/notifications
// @Summary My notifications
// @Description Newest first
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param unreadOnly query bool false "Only unread notifications"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse "Notifications retrieved successfully"
// @Router /notifications [get]
func (h *NotificationController) GetNotifications(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	var filter models.NotificationFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.notificationService.GetNotifications(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		h.respondError(c, "Failed to get notifications", err)
		return
	}
	h.ok(c, http.StatusOK, "Notifications retrieved successfully", result)
}

// GetUnreadCount handles GET /api/notifications/unread-count
// @Summary Number of unread notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.UnreadCount} "Unread count retrieved successfully"
// @Router /notifications/unread-count [get]
func (h *NotificationController) GetUnreadCount(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to count notifications", err)
		return
	}
	h.ok(c, http.StatusOK, "Unread count retrieved successfully", count)
}

// MarkAsRead handles PUT /api/notifications/{id}/read
// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.APIResponse "Notification marked as read"
// @Failure 404 {object} models.APIResponse "Not Found - Notification does not exist"
// @Router /notifications/{id}/read [put]
func (h *NotificationController) MarkAsRead(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), claims.UserID, id); err != nil {
		h.respondError(c, "Failed to mark notification as read", err)
		return
	}
	h.ok(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead handles PUT /api/notifications/read-all
// @Summary Mark every notification as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse "Notifications marked as read"
// @Router /notifications/read-all [put]
func (h *NotificationController) MarkAllAsRead(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, "Failed to mark notifications as read", err)
		return
	}
	h.ok(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": updated})
}

// DeleteNotification handles DELETE /api/notifications/{id}
// @Summary Delete a notification
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.APIResponse "Notification deleted successfully"
// @Failure 404 {object} models.APIResponse "Not Found - Notification does not exist"
// @Router /notifications/{id} [delete]
func (h *NotificationController) DeleteNotification(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		h.respondError(c, "Failed to delete notification", err)
		return
	}
	h.ok(c, http.StatusOK, "Notification deleted successfully", nil)
}
