package handler

import (
	"net/http"

	"go-gin-invitation/internal/service"

	"github.com/gin-gonic/gin"
)

// WishHandler 主辦人查看留言（含 ID）；公開留言簿在 InvitationHandler
type WishHandler struct {
	service service.WishService
	guard   *Guard
}

func NewWishHandler(service service.WishService, guard *Guard) *WishHandler {
	return &WishHandler{service: service, guard: guard}
}

func (h *WishHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/events/:id/wishes", h.guard.RequireAuth(), h.guard.RequireEventOwner(), h.List)
}

func (h *WishHandler) List(c *gin.Context) {
	wishes, err := h.service.ListByEvent(c.Request.Context(), eventFrom(c).ID)
	if err != nil {
		handleError(c, err, "ListWishes")
		return
	}
	c.JSON(http.StatusOK, wishes)
}
