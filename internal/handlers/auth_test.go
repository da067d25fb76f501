package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/reisen/shared-calendar-api/internal/constants"
	"github.com/reisen/shared-calendar-api/internal/database"
	"github.com/reisen/shared-calendar-api/internal/dto"
	"github.com/reisen/shared-calendar-api/internal/models"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"github.com/reisen/shared-calendar-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db              *gorm.DB
	handler         *AuthHandler
	identityService *services.IdentityService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
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
	identityService := services.NewIdentityService(userRepo)
	handler := NewAuthHandler(identityService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:              db,
		handler:         handler,
		identityService: identityService,
	}
}

func newAuthRouter(env authTestEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", env.handler.Signup)
	r.POST("/api/auth/login", env.handler.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "newuser",
		"password": "supersecret",
		"email":    "new@example.com",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "newuser", response.Username)
	require.NotNil(t, response.Email)
	require.Equal(t, "new@example.com", *response.Email)
}

func TestAuthHandler_Signup_DuplicateIdentityPair(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	first := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "supersecret",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	// Identical (username, email) pair must be rejected.
	dup := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "othersecret",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusConflict, dup.Code)

	// Same username with a different email is a distinct identity.
	other := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "othersecret",
		"email":    "alice@elsewhere.example",
	})
	require.Equal(t, http.StatusCreated, other.Code)
}

func TestAuthHandler_Signup_DuplicateWithoutEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	first := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "bob",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	// Two absent emails count as the same pair.
	dup := postJSON(t, r, "/api/auth/signup", map[string]string{
		"username": "bob",
		"password": "othersecret",
	})
	require.Equal(t, http.StatusConflict, dup.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.identityService.Register(services.RegisterInput{
		Username: "existing",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_Login_SameErrorForUnknownUserAndBadPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.identityService.Register(services.RegisterInput{
		Username: "existing",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := newAuthRouter(env)

	badPassword := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "wrongpassword",
	})
	unknownUser := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusUnauthorized, badPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, badPassword.Body.String(), unknownUser.Body.String())
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.identityService.Register(services.RegisterInput{
		Username: "current-user",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUserID, user.ID)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Username, response.Username)
}
