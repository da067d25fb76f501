package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/dto"
	apierrors "github.com/reisen/shared-calendar-api/internal/errors"
	"github.com/reisen/shared-calendar-api/internal/middleware"
	"github.com/reisen/shared-calendar-api/internal/services"
)

// CalendarHandler coordinates calendar and share-link HTTP handlers.
type CalendarHandler struct {
	calendarService *services.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// CreateCalendar creates the authenticated user's calendar.
func (h *CalendarHandler) CreateCalendar(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendar, err := h.calendarService.CreateCalendar(userID)
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCalendarDTO(*calendar, true))
}

// GetCalendar returns the authenticated user's calendar and share state.
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendar, err := h.calendarService.GetCalendarForUser(userID)
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCalendarDTO(*calendar, true))
}

// GenerateShareLink rotates the share token of the user's calendar.
func (h *CalendarHandler) GenerateShareLink(c *gin.Context) {
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

	token, err := h.calendarService.GenerateShareLink(calendar.ID, userID)
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_url": token,
	})
}

// DeleteCalendar removes the user's calendar together with all its events.
func (h *CalendarHandler) DeleteCalendar(c *gin.Context) {
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

	if err := h.calendarService.DeleteCalendar(calendar.ID, userID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Calendar deleted",
	})
}

// RevokeShareLink clears the share token of the user's calendar.
func (h *CalendarHandler) RevokeShareLink(c *gin.Context) {
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

	if err := h.calendarService.RevokeShareLink(calendar.ID, userID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Share link revoked",
	})
}

func respondCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOwnerNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCalendarAlreadyExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrCalendarNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
