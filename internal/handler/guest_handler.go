package handler

import (
	"fmt"
	"net/http"
	"strings"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GuestHandler struct {
	service     service.GuestService
	invitations service.InvitationService
	guard       *Guard
	origin      string
}

func NewGuestHandler(service service.GuestService, invitations service.InvitationService, guard *Guard, origin string) *GuestHandler {
	return &GuestHandler{service: service, invitations: invitations, guard: guard, origin: origin}
}

func (h *GuestHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/events/:id/guests", h.guard.RequireAuth(), h.guard.RequireEventOwner())
	{
		router.GET("", h.List)
		router.POST("", h.Create)
		router.POST("import", h.Import)
		router.GET("export", h.Export)
		router.DELETE(":guestId", h.Delete)
	}
}

// guestResponse 附上邀請連結，方便主辦人分享
type guestResponse struct {
	*model.Guest
	Link string `json:"link"`
}

func (h *GuestHandler) withLinks(guests []*model.Guest) []guestResponse {
	out := make([]guestResponse, 0, len(guests))
	for _, g := range guests {
		out = append(out, guestResponse{Guest: g, Link: model.InvitationLink(h.origin, g.UniqueSlug)})
	}
	return out
}

func (h *GuestHandler) List(c *gin.Context) {
	guests, err := h.service.ListByEvent(c.Request.Context(), eventFrom(c).ID)
	if err != nil {
		handleError(c, err, "ListGuests")
		return
	}
	c.JSON(http.StatusOK, h.withLinks(guests))
}

func (h *GuestHandler) Create(c *gin.Context) {
	var req model.CreateGuestRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	guest, err := h.service.Create(c.Request.Context(), eventFrom(c).ID, service.GuestInput{
		GuestName:   req.GuestName,
		PhoneNumber: req.PhoneNumber,
		Instagram:   req.Instagram,
	})
	if err != nil {
		handleError(c, err, "CreateGuest")
		return
	}
	c.JSON(http.StatusCreated, guestResponse{Guest: guest, Link: model.InvitationLink(h.origin, guest.UniqueSlug)})
}

// Import creates one guest per non-blank line. On failure the guests created
// before the failing line are kept and returned next to the error.
func (h *GuestHandler) Import(c *gin.Context) {
	var req model.ImportGuestsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	ctx := c.Request.Context()
	eventID := eventFrom(c).ID

	lines := strings.Split(strings.ReplaceAll(req.Text, "\r\n", "\n"), "\n")
	created, err := h.service.Import(ctx, eventID, lines)
	if err != nil {
		status, body := errorResponse(err)
		body["created"] = h.withLinks(created)
		logError(status, err, "ImportGuests")
		c.JSON(status, body)
		return
	}

	resp := gin.H{"created": h.withLinks(created)}
	if req.Dispatch && len(created) > 0 {
		ids := make([]uuid.UUID, 0, len(created))
		for _, g := range created {
			ids = append(ids, g.ID)
		}
		queued, err := h.invitations.Dispatch(ctx, eventID, ids)
		if err != nil {
			handleError(c, err, "ImportGuests.Dispatch")
			return
		}
		resp["queued"] = queued
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GuestHandler) Export(c *gin.Context) {
	event := eventFrom(c)
	data, err := h.service.ExportCSV(c.Request.Context(), event.ID, h.origin)
	if err != nil {
		handleError(c, err, "ExportGuests")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="guests-%s.csv"`, event.ID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *GuestHandler) Delete(c *gin.Context) {
	guestID, ok := ParamUUID(c, "guestId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	guest, err := h.service.GetByID(ctx, guestID)
	if err != nil {
		handleError(c, err, "DeleteGuest")
		return
	}
	if guest.EventID != eventFrom(c).ID {
		handleError(c, apperrors.ErrGuestNotFound, "DeleteGuest")
		return
	}
	if err := h.service.Delete(ctx, guestID); err != nil {
		handleError(c, err, "DeleteGuest")
		return
	}
	c.Status(http.StatusNoContent)
}
