package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/constants"
	"github.com/reisen/shared-calendar-api/internal/database"
	"github.com/reisen/shared-calendar-api/internal/dto"
	"github.com/reisen/shared-calendar-api/internal/middleware"
	"github.com/reisen/shared-calendar-api/internal/models"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"github.com/reisen/shared-calendar-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type calendarTestEnv struct {
	db              *gorm.DB
	handler         *CalendarHandler
	identityService *services.IdentityService
	calendarService *services.CalendarService
}

func setupCalendarTestEnv(t *testing.T) calendarTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Calendar{},
		&models.Event{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	identityService := services.NewIdentityService(userRepo)
	calendarService := services.NewCalendarService(calendarRepo, userRepo)
	handler := NewCalendarHandler(calendarService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return calendarTestEnv{
		db:              db,
		handler:         handler,
		identityService: identityService,
		calendarService: calendarService,
	}
}

func calendarTestContext(userID uint64, calendar *models.Calendar) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/calendar", nil)
	c.Set(constants.ContextKeyUserID, userID)
	if calendar != nil {
		c.Set(middleware.ContextKeyCalendar, *calendar)
	}
	return c, w
}

func registerTestUser(t *testing.T, env calendarTestEnv, username string) *models.User {
	t.Helper()

	user, err := env.identityService.Register(services.RegisterInput{
		Username: username,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func TestCalendarHandler_CreateCalendar(t *testing.T) {
	env := setupCalendarTestEnv(t)
	user := registerTestUser(t, env, "owner")

	c, w := calendarTestContext(user.ID, nil)
	env.handler.CreateCalendar(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.CalendarDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.UserID)
	require.False(t, response.Shared)

	// One calendar per user: a second create must conflict.
	c2, w2 := calendarTestContext(user.ID, nil)
	env.handler.CreateCalendar(c2)
	require.Equal(t, http.StatusConflict, w2.Code)
}

func TestCalendarHandler_CreateCalendar_UnknownOwner(t *testing.T) {
	env := setupCalendarTestEnv(t)

	c, w := calendarTestContext(9999, nil)
	env.handler.CreateCalendar(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarHandler_ShareLinkRotation(t *testing.T) {
	env := setupCalendarTestEnv(t)
	user := registerTestUser(t, env, "owner")

	calendar, err := env.calendarService.CreateCalendar(user.ID)
	require.NoError(t, err)

	c, w := calendarTestContext(user.ID, calendar)
	env.handler.GenerateShareLink(c)
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		ShareURL string `json:"share_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotEmpty(t, first.ShareURL)

	resolved, err := env.calendarService.ResolveByShareToken(first.ShareURL)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, calendar.ID, resolved.ID)

	// Regeneration invalidates the previous token immediately.
	c2, w2 := calendarTestContext(user.ID, calendar)
	env.handler.GenerateShareLink(c2)
	require.Equal(t, http.StatusOK, w2.Code)

	var second struct {
		ShareURL string `json:"share_url"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &second))
	require.NotEqual(t, first.ShareURL, second.ShareURL)

	stale, err := env.calendarService.ResolveByShareToken(first.ShareURL)
	require.NoError(t, err)
	require.Nil(t, stale)
}

func TestCalendarHandler_DeleteCalendar_CascadesEvents(t *testing.T) {
	env := setupCalendarTestEnv(t)
	user := registerTestUser(t, env, "owner")

	calendar, err := env.calendarService.CreateCalendar(user.ID)
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.Event{
		CalendarID: calendar.ID,
		Title:      "doomed",
		Month:      3,
		Day:        14,
	}).Error)

	c, w := calendarTestContext(user.ID, calendar)
	env.handler.DeleteCalendar(c)
	require.Equal(t, http.StatusOK, w.Code)

	var calendarCount, eventCount int64
	require.NoError(t, env.db.Model(&models.Calendar{}).Count(&calendarCount).Error)
	require.NoError(t, env.db.Model(&models.Event{}).Count(&eventCount).Error)
	require.Zero(t, calendarCount)
	require.Zero(t, eventCount)

	// The user can start over afterwards.
	c2, w2 := calendarTestContext(user.ID, nil)
	env.handler.CreateCalendar(c2)
	require.Equal(t, http.StatusCreated, w2.Code)
}

func TestCalendarHandler_ShareLink_NotOwner(t *testing.T) {
	env := setupCalendarTestEnv(t)
	owner := registerTestUser(t, env, "owner")
	intruder := registerTestUser(t, env, "intruder")

	calendar, err := env.calendarService.CreateCalendar(owner.ID)
	require.NoError(t, err)

	c, w := calendarTestContext(intruder.ID, calendar)
	env.handler.GenerateShareLink(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCalendarHandler_RevokeShareLink_Idempotent(t *testing.T) {
	env := setupCalendarTestEnv(t)
	user := registerTestUser(t, env, "owner")

	calendar, err := env.calendarService.CreateCalendar(user.ID)
	require.NoError(t, err)

	token, err := env.calendarService.GenerateShareLink(calendar.ID, user.ID)
	require.NoError(t, err)

	c, w := calendarTestContext(user.ID, calendar)
	env.handler.RevokeShareLink(c)
	require.Equal(t, http.StatusOK, w.Code)

	resolved, err := env.calendarService.ResolveByShareToken(token)
	require.NoError(t, err)
	require.Nil(t, resolved)

	// Revoking an already private calendar still succeeds.
	c2, w2 := calendarTestContext(user.ID, calendar)
	env.handler.RevokeShareLink(c2)
	require.Equal(t, http.StatusOK, w2.Code)
}
