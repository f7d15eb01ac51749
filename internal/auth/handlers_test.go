package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkau/librarium/internal/config"
	"github.com/avolkau/librarium/internal/database/users"
	"github.com/avolkau/librarium/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authEvent struct {
	userID  uint
	action  string
	success bool
}

// recordingAuthAuditor captures LogAuth calls for assertions.
type recordingAuthAuditor struct {
	events []authEvent
}

func (a *recordingAuthAuditor) LogAuth(userID uint, action string, success bool) {
	a.events = append(a.events, authEvent{userID: userID, action: action, success: success})
}

func setupHandlers(t *testing.T) (*gin.Engine, *Service, *recordingAuthAuditor, func()) {
	dbPath := "./test_auth_handlers_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	cfg := config.Auth{
		SessionLifetime: time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}

	svc := NewService(users.NewRepository(db), cfg)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	auditor := &recordingAuthAuditor{}
	controller := NewController(svc, sm)
	controller.SetAuditor(auditor)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm).Handler())
	router.POST("/api/auth/login", controller.Login)
	router.POST("/api/auth/signup", controller.Signup)
	router.POST("/api/auth/logout", controller.Logout)

	cleanup := func() {
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, svc, auditor, cleanup
}

func postJSON(router *gin.Engine, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_RecordsAuditEvent(t *testing.T) {
	router, svc, auditor, cleanup := setupHandlers(t)
	defer cleanup()

	user, err := svc.Register("Alice", "LIB-1001", "secret-pass")
	require.NoError(t, err)

	w := postJSON(router, "/api/auth/login", gin.H{
		"library_id": "LIB-1001",
		"password":   "secret-pass",
		"portal":     "student",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, "login", auditor.events[0].action)
	assert.Equal(t, user.ID, auditor.events[0].userID)
	assert.True(t, auditor.events[0].success)
}

func TestLogin_RecordsFailedAttempt(t *testing.T) {
	router, svc, auditor, cleanup := setupHandlers(t)
	defer cleanup()

	_, err := svc.Register("Alice", "LIB-1001", "secret-pass")
	require.NoError(t, err)

	w := postJSON(router, "/api/auth/login", gin.H{
		"library_id": "LIB-1001",
		"password":   "wrong",
		"portal":     "student",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, "login", auditor.events[0].action)
	assert.Equal(t, uint(0), auditor.events[0].userID)
	assert.False(t, auditor.events[0].success)
}

func TestLogout_RecordsAuditEvent(t *testing.T) {
	router, svc, auditor, cleanup := setupHandlers(t)
	defer cleanup()

	user, err := svc.Register("Alice", "LIB-1001", "secret-pass")
	require.NoError(t, err)

	w := postJSON(router, "/api/auth/login", gin.H{
		"library_id": "LIB-1001",
		"password":   "secret-pass",
		"portal":     "student",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/logout", nil, w.Result().Cookies())
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, auditor.events, 2)
	assert.Equal(t, "logout", auditor.events[1].action)
	assert.Equal(t, user.ID, auditor.events[1].userID)
	assert.True(t, auditor.events[1].success)
}

func TestSignup_RecordsAuditEvent(t *testing.T) {
	router, _, auditor, cleanup := setupHandlers(t)
	defer cleanup()

	w := postJSON(router, "/api/auth/signup", gin.H{
		"name":     "Bob",
		"password": "secret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, "signup", auditor.events[0].action)
	assert.True(t, auditor.events[0].success)
}
