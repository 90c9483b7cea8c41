package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/prompts"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
)

// GatewayHandlerTestSuite defines the test suite for GatewayHandler
type GatewayHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	upstream *httptest.Server
	// swapped per test to script the upstream provider
	upstreamHandler http.HandlerFunc
	handler         *GatewayHandler
	router          *gin.Engine
}

func (suite *GatewayHandlerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateWith(suite.db))
	database.SetDB(suite.db)

	suite.upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	suite.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.upstreamHandler(w, r)
	}))

	auditService := services.NewAuditService(repository.NewAuditRepository(suite.db))
	suite.handler = NewGatewayHandler(prompts.Default(), suite.upstream.URL, "test-key", "", auditService)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.POST("/chat", suite.handler.Chat)
	suite.router.POST("/openai", suite.handler.OpenAI)
	suite.router.POST("/audit", suite.handler.Audit)
}

func (suite *GatewayHandlerTestSuite) TearDownTest() {
	suite.upstream.Close()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *GatewayHandlerTestSuite) post(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	suite.Require().NoError(err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *GatewayHandlerTestSuite) TestChatEmptyMessages() {
	w := suite.post("/chat", gin.H{"messages": []any{}})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GatewayHandlerTestSuite) TestChatInvalidBody() {
	req := httptest.NewRequest("POST", "/chat", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GatewayHandlerTestSuite) TestChatProxiesUpstreamStream() {
	var captured struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	suite.upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/chat/completions", r.URL.Path)
		suite.Equal("Bearer test-key", r.Header.Get("Authorization"))
		suite.NoError(json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n\n"))
	}

	w := suite.post("/chat", gin.H{
		"expertise": "HR",
		"messages":  []gin.H{{"role": "user", "content": "Hello"}},
	})

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("text/event-stream", w.Header().Get("Content-Type"))
	// bytes pass through untouched
	suite.Contains(w.Body.String(), "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}")
	suite.Contains(w.Body.String(), "data: [DONE]")

	suite.Equal("google/gemini-2.5-flash", captured.Model)
	suite.True(captured.Stream)
	suite.Require().Len(captured.Messages, 2)
	suite.Equal("system", captured.Messages[0].Role)
	suite.Equal("user", captured.Messages[1].Role)
	suite.Equal("Hello", captured.Messages[1].Content)
}

func (suite *GatewayHandlerTestSuite) TestChatImageModelSwitch() {
	var captured struct {
		Model string `json:"model"`
	}
	suite.upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte("data: [DONE]\n\n"))
	}

	w := suite.post("/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "draw me a picture of a cat"}},
	})

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("google/gemini-2.5-flash-image-preview", captured.Model)
}

func (suite *GatewayHandlerTestSuite) TestChatUpstreamRateLimited() {
	suite.upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}

	w := suite.post("/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Hello"}},
	})

	suite.Equal(http.StatusTooManyRequests, w.Code)
	var body map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("RATE_LIMITED", body["code"])
}

func (suite *GatewayHandlerTestSuite) TestChatUpstreamPaymentRequired() {
	suite.upstreamHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}

	w := suite.post("/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Hello"}},
	})

	suite.Equal(http.StatusPaymentRequired, w.Code)
}

func (suite *GatewayHandlerTestSuite) TestOpenAIInvalidBody() {
	w := suite.post("/openai", gin.H{"messages": []any{}})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GatewayHandlerTestSuite) TestAuditMissingFields() {
	w := suite.post("/audit", gin.H{"actorId": "u1"})
	suite.Equal(http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.AuditLog{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *GatewayHandlerTestSuite) TestAuditAppendsAndAcks() {
	w := suite.post("/audit", gin.H{
		"actorId":    "user-1",
		"entityType": "task",
		"entityId":   "task-9",
		"action":     "task.verified",
		"details":    gin.H{"approved": true},
	})

	suite.Equal(http.StatusOK, w.Code)
	var body map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(true, body["ok"])
	ts, err := time.Parse(time.RFC3339, body["ts"].(string))
	suite.NoError(err)
	suite.WithinDuration(time.Now(), ts, time.Minute)

	var entry models.AuditLog
	suite.NoError(suite.db.First(&entry).Error)
	suite.Equal("user-1", entry.ActorID)
	suite.Equal("task", entry.EntityType)
	suite.Equal("task.verified", entry.Action)
	suite.Contains(string(entry.Details), "approved")
}

func (suite *GatewayHandlerTestSuite) TestAuditHonorsClientTimestamp() {
	past := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := suite.post("/audit", gin.H{
		"actorId":    "user-1",
		"entityType": "employee",
		"entityId":   "emp-2",
		"action":     "employee.created",
		"ts":         past.Format(time.RFC3339),
	})

	suite.Equal(http.StatusOK, w.Code)
	var body map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(past.Format(time.RFC3339), body["ts"])
}

func TestGatewayHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayHandlerTestSuite))
}
