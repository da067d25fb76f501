package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/dto"
	apierrors "github.com/reisen/shared-calendar-api/internal/errors"
	"github.com/reisen/shared-calendar-api/internal/services"
)

// SharedHandler serves anonymous reads through share links.
type SharedHandler struct {
	calendarService *services.CalendarService
	eventService    *services.EventService
}

// NewSharedHandler creates a new SharedHandler.
func NewSharedHandler(calendarService *services.CalendarService, eventService *services.EventService) *SharedHandler {
	return &SharedHandler{
		calendarService: calendarService,
		eventService:    eventService,
	}
}

// GetSharedCalendar returns the public events of the calendar behind a share
// token. Unknown and revoked tokens are indistinguishable.
func (h *SharedHandler) GetSharedCalendar(c *gin.Context) {
	token := c.Param("token")

	calendar, err := h.calendarService.ResolveByShareToken(token)
	if err != nil {
		apierrors.InternalError(c, "Failed to resolve share link")
		return
	}
	if calendar == nil {
		apierrors.Forbidden(c, "Access denied")
		return
	}

	events, err := h.eventService.ListVisibleEvents(calendar.ID, services.ShareTokenViewer(token))
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SharedCalendarDTO{
		CalendarID: calendar.ID,
		Events:     dto.ToEventDTOs(events),
	})
}
