package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"bazaar_backend/internal/models"
	"bazaar_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := uniqueEmail("buyer")
	registerBody := map[string]interface{}{
		"name":     "Тестовый Покупатель",
		"email":    email,
		"password": "super_password123",
		"role":     "buyer",
	}

	regRes, regBodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, regRes.Code, "Ответ: "+regBodyStr)
	assert.Contains(t, regBodyStr, email)

	loginBody := map[string]interface{}{
		"email":    email,
		"password": "super_password123",
	}
	logRes, logBodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	require.Equal(t, http.StatusOK, logRes.Code, "Ответ: "+logBodyStr)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(logBodyStr), &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	meRes, meBodyStr := ts.SendRequest(t, tx, http.MethodGet, "/api/v1/users/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, meRes.Code)
	assert.Contains(t, meBodyStr, email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := uniqueEmail("dup")
	require.NoError(t, helpers.CreateUser(t, tx, &models.User{
		Name:         "Первый",
		Email:        email,
		PasswordHash: "password123",
		Role:         models.UserRoleBuyer,
	}))

	regRes, regBodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Второй",
		"email":    email,
		"password": "password123",
		"role":     "seller",
	})
	assert.Equal(t, http.StatusConflict, regRes.Code, "Ответ: "+regBodyStr)
}

func TestLogin_BadPassword(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := uniqueEmail("badpass")
	require.NoError(t, helpers.CreateUser(t, tx, &models.User{
		Name:         "Тест",
		Email:        email,
		PasswordHash: "correct-password",
		Role:         models.UserRoleBuyer,
	}))

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code, "Ответ: "+bodyStr)
}

// Полный цикл ротации: refresh выдает новую пару, повторное предъявление
// старого токена отзывает все сессии пользователя
func TestRefresh_RotationAndReuse(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, refreshToken, _ := helpers.CreateAndLoginUser(t, ts, tx, "Покупатель", uniqueEmail("rotate"), "password123", models.UserRoleBuyer)

	// Первый refresh успешен
	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": refreshToken,
	})
	require.Equal(t, http.StatusOK, res.Code, "Ответ: "+bodyStr)

	var rotated struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &rotated))
	require.NotEmpty(t, rotated.RefreshToken)
	require.NotEqual(t, refreshToken, rotated.RefreshToken)

	// Повтор старого токена - reuse detection
	res, bodyStr = ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, bodyStr, "reuse")

	// Каскад отозвал и свежевыданный токен
	res, _ = ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": rotated.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	accessToken, refreshToken, _ := helpers.CreateAndLoginUser(t, ts, tx, "Покупатель", uniqueEmail("logout"), "password123", models.UserRoleBuyer)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/logout", accessToken, map[string]interface{}{
		"refresh_token": refreshToken,
	})
	require.Equal(t, http.StatusOK, res.Code, "Ответ: "+bodyStr)

	// Отозванный refresh-токен больше не работает
	res, _ = ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": refreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSessions_ListsDevices(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := uniqueEmail("sessions")
	accessToken, _, _ := helpers.CreateAndLoginUser(t, ts, tx, "Покупатель", email, "password123", models.UserRoleBuyer)

	// Вторая сессия
	res, _ := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.Code)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodGet, "/api/v1/auth/sessions", accessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Sessions []struct {
			ID        string `json:"id"`
			IsRevoked bool   `json:"is_revoked"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &payload))
	assert.Len(t, payload.Sessions, 2)
}
