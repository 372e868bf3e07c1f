package handlers

import (
	"net/http"

	"bazaar_backend/internal/middleware"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/services"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	*BaseHandler
	voucherService services.VoucherService
	shopService    services.ShopService
}

func NewVoucherHandler(base *BaseHandler, voucherService services.VoucherService, shopService services.ShopService) *VoucherHandler {
	return &VoucherHandler{BaseHandler: base, voucherService: voucherService, shopService: shopService}
}

// CreateAdminVoucher - POST /admin/vouchers
func (h *VoucherHandler) CreateAdminVoucher(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	voucher, err := h.voucherService.CreateAdminVoucher(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewVoucherResponse(voucher))
}

// CreateSellerVoucher - POST /vouchers (seller, свой магазин)
func (h *VoucherHandler) CreateSellerVoucher(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	shop, err := h.shopService.GetOwnShop(db, middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	voucher, err := h.voucherService.CreateSellerVoucher(db, shop.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewVoucherResponse(voucher))
}

// ListAdminVouchers - GET /admin/vouchers
func (h *VoucherHandler) ListAdminVouchers(c *gin.Context) {
	vouchers, err := h.voucherService.ListAdminVouchers(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		responses = append(responses, dto.NewVoucherResponse(&vouchers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": responses})
}

// ListOwnVouchers - GET /vouchers (seller)
func (h *VoucherHandler) ListOwnVouchers(c *gin.Context) {
	db := h.GetDB(c)
	shop, err := h.shopService.GetOwnShop(db, middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	vouchers, err := h.voucherService.ListForShop(db, shop.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		responses = append(responses, dto.NewVoucherResponse(&vouchers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": responses})
}

// Update - PATCH /vouchers/:id (владелец или админ)
func (h *VoucherHandler) Update(c *gin.Context) {
	var req dto.UpdateVoucherRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	if err := h.authorizeVoucherAccess(c, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	voucher, err := h.voucherService.Update(db, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVoucherResponse(voucher))
}

// Delete - DELETE /vouchers/:id (владелец или админ)
func (h *VoucherHandler) Delete(c *gin.Context) {
	if err := h.authorizeVoucherAccess(c, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.voucherService.Delete(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted"})
}

// authorizeVoucherAccess: админ может все, продавец - только ваучеры
// своего магазина
func (h *VoucherHandler) authorizeVoucherAccess(c *gin.Context, voucherID string) error {
	role, _ := middleware.CurrentRole(c)
	if role == models.UserRoleAdmin {
		return nil
	}

	db := h.GetDB(c)
	voucher, err := h.voucherService.GetByID(db, voucherID)
	if err != nil {
		return err
	}
	shop, err := h.shopService.GetOwnShop(db, middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	if voucher.ShopID == nil || *voucher.ShopID != shop.ID {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}
