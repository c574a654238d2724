// README: Notification handlers for the caller's inbox and push device registration.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/http/middleware"
	"fleet/internal/modules/notification"
	"fleet/internal/types"
)

type NotificationHandler struct {
	notify *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{notify: svc}
}

type registerDeviceReq struct {
	Token string `json:"token"`
}

func (h *NotificationHandler) Inbox(c *gin.Context) {
	msgs, err := h.notify.Inbox(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeNotificationError(c, err, "caller id is required")
		return
	}
	writeJSON(c, http.StatusOK, msgs)
}

func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	var req registerDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.notify.RegisterDevice(c.Request.Context(), types.ID(middleware.CallerUID(c)), req.Token); err != nil {
		writeNotificationError(c, err, "device token is required")
		return
	}
	c.Status(http.StatusNoContent)
}

// writeNotificationError reports ErrBadRequest with the operation's own message.
func writeNotificationError(c *gin.Context, err error, badRequest string) {
	_ = c.Error(err)
	if errors.Is(err, notification.ErrBadRequest) {
		writeError(c, http.StatusBadRequest, badRequest)
		return
	}
	writeError(c, http.StatusInternalServerError, "internal error")
}
