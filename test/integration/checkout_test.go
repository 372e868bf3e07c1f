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
	"gorm.io/gorm"
)

// checkoutFixture: продавец с товаром и залогиненный покупатель
type checkoutFixture struct {
	buyerToken string
	product    *models.Product
	shop       *models.Shop
}

func setupCheckout(t *testing.T, ts *helpers.TestServer, tx *gorm.DB) checkoutFixture {
	t.Helper()

	seller := &models.User{
		Name:         "Продавец",
		Email:        uniqueEmail("seller"),
		PasswordHash: "password123",
		Role:         models.UserRoleSeller,
	}
	require.NoError(t, helpers.CreateUser(t, tx, seller))

	shop := helpers.CreateApprovedShop(t, tx, seller.ID, "Техника от Ивана")
	category := helpers.CreateCategory(t, tx, "Электроника", nil)
	product := helpers.CreateProduct(t, tx, shop.ID, category.ID, "Наушники", 50, 10)

	buyerToken, _, _ := helpers.CreateAndLoginUser(t, ts, tx, "Покупатель", uniqueEmail("buyer"), "password123", models.UserRoleBuyer)

	return checkoutFixture{buyerToken: buyerToken, product: product, shop: shop}
}

func TestCheckout_FullFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	fx := setupCheckout(t, ts, tx)

	helpers.CreateVoucher(t, tx, "SALE10", func(v *models.Voucher) {
		v.DiscountType = models.DiscountTypePercent
		v.DiscountValue = 10
	})

	// Кладем 2 штуки по 50 в корзину
	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/cart/items", fx.buyerToken, map[string]interface{}{
		"product_id": fx.product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, res.Code, "Ответ: "+bodyStr)

	res, bodyStr = ts.SendRequest(t, tx, http.MethodPost, "/api/v1/checkout", fx.buyerToken, map[string]interface{}{
		"voucher_codes":    []string{"SALE10"},
		"shipping_address": "г. Алматы, ул. Абая 10",
		"shipping_fee":     15,
	})
	require.Equal(t, http.StatusCreated, res.Code, "Ответ: "+bodyStr)

	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &order))
	assert.InDelta(t, 100.0, order.Subtotal, 0.001)
	assert.InDelta(t, 10.0, order.ProductDiscount, 0.001)
	assert.InDelta(t, 105.0, order.Total, 0.001) // 100 + 15 доставка - 10 скидка
	require.Len(t, order.Items, 1)
	assert.Equal(t, fx.product.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Заказ виден в списке
	res, bodyStr = ts.SendRequest(t, tx, http.MethodGet, "/api/v1/orders", fx.buyerToken, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, bodyStr, order.ID)

	// Корзина опустела
	res, bodyStr = ts.SendRequest(t, tx, http.MethodGet, "/api/v1/cart", fx.buyerToken, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, bodyStr, fx.product.ID)
}

func TestCheckout_VoucherMinimumNotMet(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	fx := setupCheckout(t, ts, tx)

	helpers.CreateVoucher(t, tx, "MIN500", func(v *models.Voucher) {
		v.MinOrderValue = 500
	})

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/cart/items", fx.buyerToken, map[string]interface{}{
		"product_id": fx.product.ID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, res.Code, "Ответ: "+bodyStr)

	res, bodyStr = ts.SendRequest(t, tx, http.MethodPost, "/api/v1/checkout", fx.buyerToken, map[string]interface{}{
		"voucher_codes":    []string{"MIN500"},
		"shipping_address": "г. Алматы, ул. Абая 10",
		"shipping_fee":     15,
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, bodyStr, "Minimum order value")
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	buyerToken, _, _ := helpers.CreateAndLoginUser(t, ts, tx, "Покупатель", uniqueEmail("empty"), "password123", models.UserRoleBuyer)

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/checkout", buyerToken, map[string]interface{}{
		"shipping_address": "г. Алматы, ул. Абая 10",
		"shipping_fee":     0,
	})
	assert.Equal(t, http.StatusBadRequest, res.Code, "Ответ: "+bodyStr)
}
