package integration_test

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"bazaar_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer возвращает общий тестовый сервер (создает при первом вызове).
// Интеграционные тесты требуют живой postgres: DATABASE_URL должен
// указывать на тестовую БД, иначе пакет пропускается целиком.
func GetTestServer(t *testing.T) *helpers.TestServer {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL is not set, skipping integration tests")
	}

	serverOnce.Do(func() {
		os.Setenv("SERVER_ENV", "test")
		if os.Getenv("JWT_SECRET") == "" {
			os.Setenv("JWT_SECRET", "integration_test_secret_12345")
		}
		globalTestServer = helpers.NewTestServer(t)
	})
	return globalTestServer
}

func TestMain(m *testing.M) {
	code := m.Run()
	if globalTestServer != nil {
		globalTestServer.Close()
	}
	os.Exit(code)
}

// uniqueEmail дает каждому тесту свой email, чтобы параллельные
// транзакции не конфликтовали по уникальному индексу
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}
