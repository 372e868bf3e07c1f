package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"bazaar_backend/database"
	"bazaar_backend/internal/app"
	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/config"
	"bazaar_backend/internal/notifier"
	"bazaar_backend/internal/services"
	"bazaar_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestServer поднимает полный роутер приложения поверх тестовой БД.
// Запросы выполняются in-process, поэтому транзакция теста пробрасывается
// через контекст запроса: DBMiddleware подхватывает ее вместо пула,
// а rollback в defer оставляет БД чистой.
type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL is not set, skipping integration tests")
	}

	gin.SetMode(gin.TestMode)
	config.LoadConfig()
	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД (%s): %v", cfg.Database.DSN, err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Не удалось выполнить миграцию тестовой БД: %v", err)
	}

	deps := services.Dependencies{
		Codec: auth.NewTokenCodec(
			cfg.JWT.Secret,
			time.Duration(cfg.JWT.AccessTTLMin)*time.Minute,
			time.Duration(cfg.JWT.RefreshTTLDays)*24*time.Hour,
			nil,
		),
		Hasher:    auth.NewBcryptHasher(),
		Denylist:  auth.NewDenylist(nil),
		Publisher: notifier.NoopPublisher{},
	}

	return &TestServer{
		Router: app.SetupRouter(db, deps),
		DB:     db,
	}
}

func (ts *TestServer) Close() {
	sqlDB, err := ts.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// BeginTransaction открывает транзакцию для одного теста
func (ts *TestServer) BeginTransaction(t *testing.T) *gorm.DB {
	t.Helper()
	tx := ts.DB.Begin()
	if tx.Error != nil {
		t.Fatalf("Не удалось открыть транзакцию: %v", tx.Error)
	}
	return tx
}

func (ts *TestServer) RollbackTransaction(t *testing.T, tx *gorm.DB) {
	t.Helper()
	tx.Rollback()
}

// SendRequest выполняет запрос против роутера приложения.
// При tx != nil хендлеры работают внутри этой транзакции.
func (ts *TestServer) SendRequest(t *testing.T, tx *gorm.DB, method, path, token string, body interface{}) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tx != nil {
		ctx := context.WithValue(req.Context(), contextkeys.DBContextKey, tx)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec, rec.Body.String()
}
