package handler

import (
	"net/http"

	"go-gin-invitation/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
	guard   *Guard
}

func NewEventHandler(service service.EventService, guard *Guard) *EventHandler {
	return &EventHandler{service: service, guard: guard}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", h.guard.RequireAuth())
	{
		router.GET("events", h.List)
		router.POST("events", h.Create)

		owned := router.Group("events/:id", h.guard.RequireEventOwner())
		owned.GET("", h.Get)
		owned.PUT("", h.Update)
		owned.DELETE("", h.Delete)
	}
}

func (h *EventHandler) List(c *gin.Context) {
	session := sessionFrom(c)
	events, err := h.service.ListByUser(c.Request.Context(), session.UserID)
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req service.EventInput
	if err := BindJson(c, &req); err != nil {
		return
	}
	session := sessionFrom(c)
	created, err := h.service.Create(c.Request.Context(), session.UserID, req)
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns the event already loaded (and default-filled) by the owner check.
func (h *EventHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, eventFrom(c))
}

func (h *EventHandler) Update(c *gin.Context) {
	var req service.EventPatch
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.Update(c.Request.Context(), eventFrom(c).ID, req)
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), eventFrom(c).ID); err != nil {
		handleError(c, err, "DeleteEvent")
		return
	}
	c.Status(http.StatusNoContent)
}
