package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/dto"
	apierrors "github.com/reisen/shared-calendar-api/internal/errors"
	"github.com/reisen/shared-calendar-api/internal/middleware"
	"github.com/reisen/shared-calendar-api/internal/services"
)

// EventHandler coordinates event HTTP handlers.
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents returns every event on the user's calendar, private included.
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendar, ok := middleware.GetCalendar(c)
	if !ok {
		apierrors.NotFound(c, "Calendar not found")
		return
	}

	events, err := h.eventService.ListVisibleEvents(calendar.ID, services.OwnerViewer(userID))
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": dto.ToEventDTOs(events),
	})
}

// CreateEvent adds an event to the user's calendar.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	type CreateEventRequest struct {
		Title   string  `json:"title" binding:"required"`
		Month   int     `json:"month" binding:"required"`
		Day     int     `json:"day" binding:"required"`
		Year    *int    `json:"year"`
		Notes   *string `json:"notes"`
		Private bool    `json:"private"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendar, ok := middleware.GetCalendar(c)
	if !ok {
		apierrors.NotFound(c, "Calendar not found")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.CreateEvent(services.CreateEventInput{
		CalendarID:  calendar.ID,
		RequesterID: userID,
		Title:       req.Title,
		Month:       req.Month,
		Day:         req.Day,
		Year:        req.Year,
		Notes:       req.Notes,
		Private:     req.Private,
	})
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventDTO(*event))
}

// UpdateEvent applies a partial update to one of the user's events.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	type UpdateEventRequest struct {
		Title      *string `json:"title"`
		Month      *int    `json:"month"`
		Day        *int    `json:"day"`
		Year       *int    `json:"year"`
		ClearYear  bool    `json:"clear_year"`
		Notes      *string `json:"notes"`
		ClearNotes bool    `json:"clear_notes"`
		Private    *bool   `json:"private"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.UpdateEvent(eventID, userID, services.EventPatch{
		Title:      req.Title,
		Month:      req.Month,
		Day:        req.Day,
		Year:       req.Year,
		ClearYear:  req.ClearYear,
		Notes:      req.Notes,
		ClearNotes: req.ClearNotes,
		Private:    req.Private,
	})
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*event))
}

// DeleteEvent removes one of the user's events. Repeated deletes succeed.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid event ID")
		return
	}

	if err := h.eventService.DeleteEvent(eventID, userID); err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted",
	})
}

func respondEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidDate):
		apierrors.InvalidDate(c, err.Error())
	case errors.Is(err, services.ErrEventNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCalendarNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAccessDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
