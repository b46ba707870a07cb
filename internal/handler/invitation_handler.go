package handler

import (
	"net/http"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvitationHandler struct {
	service     service.InvitationService
	guard       *Guard
	publicLimit gin.HandlerFunc
}

func NewInvitationHandler(service service.InvitationService, guard *Guard, publicLimit gin.HandlerFunc) *InvitationHandler {
	return &InvitationHandler{service: service, guard: guard, publicLimit: publicLimit}
}

func (h *InvitationHandler) RegisterRoutes(r *gin.Engine) {
	public := r.Group("/api/v1/invitations/:slug")
	if h.publicLimit != nil {
		public.Use(h.publicLimit)
	}
	{
		public.GET("", h.Resolve)
		public.PUT("rsvp", h.RSVP)
		public.GET("wishes", h.ListWishes)
		public.POST("wishes", h.CreateWish)
		public.GET("qr", h.QRCode)
	}

	r.POST("/api/v1/events/:id/invitations/dispatch", h.guard.RequireAuth(), h.guard.RequireEventOwner(), h.Dispatch)
}

func (h *InvitationHandler) Resolve(c *gin.Context) {
	view, err := h.service.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err, "ResolveInvitation")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *InvitationHandler) RSVP(c *gin.Context) {
	var req model.UpdateRSVPRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	guest, err := h.service.RSVP(c.Request.Context(), c.Param("slug"), req.Status)
	if err != nil {
		handleError(c, err, "RSVP")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (h *InvitationHandler) ListWishes(c *gin.Context) {
	wishes, err := h.service.ListWishes(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err, "ListPublicWishes")
		return
	}
	c.JSON(http.StatusOK, wishes)
}

func (h *InvitationHandler) CreateWish(c *gin.Context) {
	var req model.CreateWishRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	wish, err := h.service.CreateWish(c.Request.Context(), c.Param("slug"), req.Name, req.Message)
	if err != nil {
		handleError(c, err, "CreateWish")
		return
	}
	c.JSON(http.StatusCreated, wish)
}

type qrQuery struct {
	Size int `form:"size" binding:"omitempty,min=0,max=4096"`
}

func (h *InvitationHandler) QRCode(c *gin.Context) {
	var q qrQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}
	png, err := h.service.QRCode(c.Request.Context(), c.Param("slug"), q.Size)
	if err != nil {
		handleError(c, err, "QRCode")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *InvitationHandler) Dispatch(c *gin.Context) {
	var req model.DispatchRequest
	if c.Request.ContentLength != 0 {
		if err := BindJson(c, &req); err != nil {
			return
		}
	}

	ids := make([]uuid.UUID, 0, len(req.GuestIDs))
	for _, raw := range req.GuestIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id: " + raw, "code": "validation_failed"})
			return
		}
		ids = append(ids, id)
	}

	queued, err := h.service.Dispatch(c.Request.Context(), eventFrom(c).ID, ids)
	if err != nil {
		handleError(c, err, "DispatchInvitations")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}
