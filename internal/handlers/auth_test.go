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
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/dto"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	router      *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.MigrateWith(db))
	database.SetDB(db)

	authService := services.NewAuthService(repository.NewUserRepository(db))
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions("emploai_session", store))
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), handler.GetCurrentUser)
	r.PATCH("/api/auth/provider", middleware.RequireAuth(), handler.UpdateProvider)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		router:      r,
	}
}

func (env authTestEnv) request(t *testing.T, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":      "amy@example.com",
		"password":   "supersecret",
		"first_name": "Amy",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "amy@example.com", response.Email)
	require.NotNil(t, response.FirstName)
	require.Equal(t, "Amy", *response.FirstName)
	require.Equal(t, models.ProviderGemini, response.AIProvider)
}

func TestAuthHandler_SignupShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "amy@example.com",
		"password": "short",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SignupDuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Email: "amy@example.com", Password: "supersecret"})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "amy@example.com",
		"password": "supersecret",
	}, nil)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_LoginAndSession(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Email: "amy@example.com", Password: "supersecret"})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the session cookie from login authenticates /me
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	me := env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, me.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &response))
	require.Equal(t, "amy@example.com", response.Email)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Email: "amy@example.com", Password: "supersecret"})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "wrongpassword",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_MeRequiresSession(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Email: "amy@example.com", Password: "supersecret"})
	require.NoError(t, err)

	login := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()

	logout := env.request(t, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, logout.Code)

	// cleared session no longer authenticates
	me := env.request(t, http.MethodGet, "/api/auth/me", nil, logout.Result().Cookies())
	require.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestAuthHandler_UpdateProvider(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Email: "amy@example.com", Password: "supersecret"})
	require.NoError(t, err)

	login := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "supersecret",
	}, nil)
	cookies := login.Result().Cookies()

	w := env.request(t, http.MethodPatch, "/api/auth/provider", map[string]string{
		"provider": "openai",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.ProviderOpenAI, response.AIProvider)

	bad := env.request(t, http.MethodPatch, "/api/auth/provider", map[string]string{
		"provider": "psychic",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}
