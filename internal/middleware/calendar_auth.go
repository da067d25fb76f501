package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/database"
	"github.com/reisen/shared-calendar-api/internal/models"
)

// ContextKeyCalendar is where RequireCalendar stores the resolved calendar.
const ContextKeyCalendar = "calendar"

// RequireCalendar resolves the authenticated user's calendar and stores it in
// the request context. Ownership is implied: the lookup goes through the
// calendars table's user_id, the sole source of truth for ownership.
func RequireCalendar() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var calendar models.Calendar
		if err := database.GetDB().Where("user_id = ?", userID).First(&calendar).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Calendar not found",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyCalendar, calendar)
		c.Next()
	}
}

// GetCalendar retrieves the calendar stored by RequireCalendar.
func GetCalendar(c *gin.Context) (models.Calendar, bool) {
	value, exists := c.Get(ContextKeyCalendar)
	if !exists {
		return models.Calendar{}, false
	}

	calendar, ok := value.(models.Calendar)
	return calendar, ok
}
