package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zaplog/internal/config"
	"zaplog/internal/routes"
)

var dbSeq int64

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter gives each test its own in-memory database behind the real
// router, so requests exercise the full middleware and handler chain.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:zaplog_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	config.DB = db

	return routes.SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// registerUser creates an account through the API and returns its token
// and server-assigned id.
func registerUser(t *testing.T, r *gin.Engine, email string) (string, uint) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":             "Test User",
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: got status %d, body %s", email, w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response %v", email, body)
	}
	user := body["user"].(map[string]interface{})
	return token, uint(user["ID"].(float64))
}

// createTrip submits a minimal valid trip and returns its id.
func createTrip(t *testing.T, r *gin.Engine, token, driverName string, extra gin.H) uint {
	t.Helper()

	payload := gin.H{
		"driver_name": driverName,
		"phone":       "+5511999990000",
		"plate":       "ABC-1234",
		"origin":      "São Paulo",
		"destination": "Curitiba",
	}
	for k, v := range extra {
		payload[k] = v
	}

	w := doJSON(t, r, http.MethodPost, "/api/trips", token, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create trip: got status %d, body %s", w.Code, w.Body.String())
	}
	trip := decodeBody(t, w)["trip"].(map[string]interface{})
	return uint(trip["ID"].(float64))
}
