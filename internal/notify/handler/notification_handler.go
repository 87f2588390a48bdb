package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/confecta/confecta/internal/notify/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List GET /api/v1/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	unreadOnly := c.Query("unread") == "true"
	notifications, total, err := h.svc.List(c.Request.Context(), GetOwnerID(c), page, pageSize, unreadOnly)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{
		Items: notifications,
		Pagination: &Pagination{
			Page: page, PageSize: pageSize,
			Total: int(total), TotalPages: totalPages(total, pageSize),
		},
	})
}

// UnreadCount GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"count": count})
}

// MarkRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "notification marked as read"})
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.svc.MarkAllRead(c.Request.Context(), GetOwnerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}

// Delete DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOwnerID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "notification deleted"})
}
