package public

import (
	"errors"
	"strconv"

	handlershared "github.com/atlas-shop/internal/http/handlers/shared"
	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/repository"
	"github.com/atlas-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// ListNotifications 站内通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePage(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	result, err := h.NotificationService.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uid,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.notification_failed", err)
		return
	}
	response.SuccessWithPage(c, gin.H{
		"items":  result.Items,
		"unread": result.Unread,
	}, response.BuildPagination(page, pageSize, result.Total))
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.NotificationService.MarkRead(uid, uint(id)); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			respondError(c, response.CodeNotFound, "error.notification_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.notification_failed", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}
