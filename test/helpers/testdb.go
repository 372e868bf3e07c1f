package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"bazaar_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateUser создает пользователя напрямую в транзакции.
// Сырой пароль в PasswordHash хешируется автоматически.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	t.Helper()

	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("Не удалось хешировать пароль: %v", err)
		}
		user.PasswordHash = string(hashed)
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	return db.Create(user).Error
}

// CreateAndLoginUser создает пользователя и логинит его через API.
// Возвращает access-токен, refresh-токен и самого пользователя.
func CreateAndLoginUser(t *testing.T, ts *TestServer, tx *gorm.DB, name, email, password string, role models.UserRole) (string, string, *models.User) {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: password,
		Role:         role,
	}
	require.NoError(t, CreateUser(t, tx, user))

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	require.Equal(t, http.StatusOK, res.Code, "Логин должен быть успешным. Ответ: "+bodyStr)

	var loginResponse struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &loginResponse))
	assert.NotEmpty(t, loginResponse.AccessToken)
	assert.NotEmpty(t, loginResponse.RefreshToken)

	return loginResponse.AccessToken, loginResponse.RefreshToken, user
}

// CreateApprovedShop создает одобренный магазин для продавца
func CreateApprovedShop(t *testing.T, tx *gorm.DB, ownerID, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{
		OwnerID: ownerID,
		Name:    name,
		Status:  models.ShopStatusApproved,
	}
	require.NoError(t, tx.Create(shop).Error)
	return shop
}

// CreateCategory создает категорию (parentID == nil для корневой)
func CreateCategory(t *testing.T, tx *gorm.DB, name string, parentID *string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, ParentID: parentID}
	require.NoError(t, tx.Create(category).Error)
	return category
}

// CreateVariant создает вариант категории
func CreateVariant(t *testing.T, tx *gorm.DB, categoryID, name string, options []string, required bool, position int) *models.Variant {
	t.Helper()
	raw, err := json.Marshal(options)
	require.NoError(t, err)
	variant := &models.Variant{
		CategoryID: categoryID,
		Name:       name,
		Options:    datatypes.JSON(raw),
		IsRequired: required,
		Position:   position,
	}
	require.NoError(t, tx.Create(variant).Error)
	return variant
}

// CreateProduct создает активный товар
func CreateProduct(t *testing.T, tx *gorm.DB, shopID, categoryID, name string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ShopID:     shopID,
		CategoryID: categoryID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, tx.Create(product).Error)
	return product
}

// CreateVoucher создает активный ваучер с окном действия вокруг текущего
// момента; mutate донастраивает поля под конкретный тест
func CreateVoucher(t *testing.T, tx *gorm.DB, code string, mutate func(*models.Voucher)) *models.Voucher {
	t.Helper()
	now := time.Now()
	voucher := &models.Voucher{
		Code:          code,
		DiscountType:  models.DiscountTypeAmount,
		VoucherType:   models.VoucherTypeProduct,
		CreatorType:   models.CreatorTypeAdmin,
		DiscountValue: 10,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		Status:        models.VoucherStatusActive,
	}
	if mutate != nil {
		mutate(voucher)
	}
	require.NoError(t, tx.Create(voucher).Error)
	return voucher
}
