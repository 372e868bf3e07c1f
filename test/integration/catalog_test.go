package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Варианты собираются по цепочке предков, корень идет первым
func TestCategoryVariants_AggregatedRootFirst(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	root := helpers.CreateCategory(t, tx, "Электроника", nil)
	mid := helpers.CreateCategory(t, tx, "Телефоны", &root.ID)
	leaf := helpers.CreateCategory(t, tx, "Смартфоны", &mid.ID)

	helpers.CreateVariant(t, tx, root.ID, "Гарантия", []string{"6 мес", "12 мес"}, false, 0)
	helpers.CreateVariant(t, tx, mid.ID, "Память", []string{"128GB", "256GB"}, true, 0)
	helpers.CreateVariant(t, tx, leaf.ID, "Цвет", []string{"Черный", "Белый"}, true, 0)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodGet, "/api/v1/categories/"+leaf.ID+"/variants", "", nil)
	require.Equal(t, http.StatusOK, res.Code, "Ответ: "+bodyStr)

	var payload struct {
		Variants []dto.VariantView `json:"variants"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &payload))
	require.Len(t, payload.Variants, 3)
	assert.Equal(t, "Гарантия", payload.Variants[0].Name)
	assert.Equal(t, "Память", payload.Variants[1].Name)
	assert.Equal(t, "Цвет", payload.Variants[2].Name)
	assert.Equal(t, []string{"128GB", "256GB"}, payload.Variants[1].Options)
}

// Продавец переопределяет опции варианта для своего товара
func TestProductVariantOverride(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	sellerToken, _, seller := helpers.CreateAndLoginUser(t, ts, tx, "Продавец", uniqueEmail("override"), "password123", models.UserRoleSeller)
	shop := helpers.CreateApprovedShop(t, tx, seller.ID, "Мой магазин")
	category := helpers.CreateCategory(t, tx, "Смартфоны", nil)
	variant := helpers.CreateVariant(t, tx, category.ID, "Цвет", []string{"Черный", "Белый", "Красный"}, true, 0)
	product := helpers.CreateProduct(t, tx, shop.ID, category.ID, "Телефон X", 300, 5)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPut,
		"/api/v1/products/"+product.ID+"/variants/"+variant.ID, sellerToken,
		map[string]interface{}{
			"options":     []string{"Черный"},
			"is_required": false,
		})
	require.Equal(t, http.StatusOK, res.Code, "Ответ: "+bodyStr)

	// Публичная карточка товара отдает переопределенные опции
	res, bodyStr = ts.SendRequest(t, tx, http.MethodGet, "/api/v1/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var productResp dto.ProductResponse
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &productResp))
	require.Len(t, productResp.Variants, 1)
	assert.Equal(t, []string{"Черный"}, productResp.Variants[0].Options)
	assert.False(t, productResp.Variants[0].IsRequired)
	assert.True(t, productResp.Variants[0].Overridden)

	// Снятие переопределения возвращает опции категории
	res, bodyStr = ts.SendRequest(t, tx, http.MethodDelete,
		"/api/v1/products/"+product.ID+"/variants/"+variant.ID, sellerToken, nil)
	require.Equal(t, http.StatusOK, res.Code, "Ответ: "+bodyStr)

	res, bodyStr = ts.SendRequest(t, tx, http.MethodGet, "/api/v1/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &productResp))
	require.Len(t, productResp.Variants, 1)
	assert.Equal(t, []string{"Черный", "Белый", "Красный"}, productResp.Variants[0].Options)
	assert.False(t, productResp.Variants[0].Overridden)
}

// Чужой продавец не может переопределить вариант не своего товара
func TestProductVariantOverride_ForeignSellerForbidden(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, _, owner := helpers.CreateAndLoginUser(t, ts, tx, "Владелец", uniqueEmail("owner"), "password123", models.UserRoleSeller)
	shop := helpers.CreateApprovedShop(t, tx, owner.ID, "Магазин владельца")
	category := helpers.CreateCategory(t, tx, "Ноутбуки", nil)
	variant := helpers.CreateVariant(t, tx, category.ID, "RAM", []string{"8GB", "16GB"}, true, 0)
	product := helpers.CreateProduct(t, tx, shop.ID, category.ID, "Ноутбук Y", 900, 3)

	intruderToken, _, intruder := helpers.CreateAndLoginUser(t, ts, tx, "Чужой", uniqueEmail("intruder"), "password123", models.UserRoleSeller)
	helpers.CreateApprovedShop(t, tx, intruder.ID, "Чужой магазин")

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPut,
		"/api/v1/products/"+product.ID+"/variants/"+variant.ID, intruderToken,
		map[string]interface{}{"options": []string{"8GB"}})
	assert.Equal(t, http.StatusForbidden, res.Code, "Ответ: "+bodyStr)
}

func TestCategoryTree_Public(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	root := helpers.CreateCategory(t, tx, "Одежда", nil)
	helpers.CreateCategory(t, tx, "Обувь", &root.ID)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, bodyStr, "Одежда")
	assert.Contains(t, bodyStr, "Обувь")
}
