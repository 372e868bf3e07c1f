package services

import (
	"time"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// VoucherConstraints - ожидания одной проверки ваучера.
// Total - сумма, к которой ваучер применяется: для seller-ваучеров
// это подытог магазина, для admin-ваучеров - вся корзина.
type VoucherConstraints struct {
	CreatorType    models.CreatorType
	VoucherType    models.VoucherType
	ExpectedShopID *string
	Total          float64
	Now            time.Time
}

type VoucherService interface {
	CreateAdminVoucher(db *gorm.DB, req *dto.CreateVoucherRequest) (*models.Voucher, error)
	CreateSellerVoucher(db *gorm.DB, shopID string, req *dto.CreateVoucherRequest) (*models.Voucher, error)
	GetByID(db *gorm.DB, id string) (*models.Voucher, error)
	ListForShop(db *gorm.DB, shopID string) ([]models.Voucher, error)
	ListAdminVouchers(db *gorm.DB) ([]models.Voucher, error)
	Update(db *gorm.DB, id string, req *dto.UpdateVoucherRequest) (*models.Voucher, error)
	Delete(db *gorm.DB, id string) error

	// ValidateVoucher прогоняет ваучер через упорядоченную цепочку проверок.
	// Первая несработавшая проверка обрывает цепочку.
	ValidateVoucher(voucher *models.Voucher, c VoucherConstraints) error

	// ValidateCheckoutVouchers проверяет совместимость набора ваучеров
	// с корзиной и считает скидки
	ValidateCheckoutVouchers(db *gorm.DB, codes []string, shopSubtotals map[string]float64, grandTotal, shippingFee float64, now time.Time) (*CheckoutDiscounts, error)
}

// CheckoutDiscounts - итог применения ваучеров на чекауте
type CheckoutDiscounts struct {
	ShippingDiscount float64
	ProductDiscount  float64
	Applied          []dto.AppliedVoucher
}

type VoucherServiceImpl struct {
	voucherRepo repositories.VoucherRepository
}

func NewVoucherService(voucherRepo repositories.VoucherRepository) VoucherService {
	return &VoucherServiceImpl{voucherRepo: voucherRepo}
}

func (s *VoucherServiceImpl) CreateAdminVoucher(db *gorm.DB, req *dto.CreateVoucherRequest) (*models.Voucher, error) {
	return s.create(db, req, models.CreatorTypeAdmin, nil)
}

// CreateSellerVoucher - ваучер магазина. Продавец выпускает только
// product-ваучеры: скидка на доставку - прерогатива платформы.
func (s *VoucherServiceImpl) CreateSellerVoucher(db *gorm.DB, shopID string, req *dto.CreateVoucherRequest) (*models.Voucher, error) {
	if req.VoucherType != models.VoucherTypeProduct {
		return nil, apperrors.ErrInvalidOperation("voucher", "Sellers can only create product vouchers")
	}
	return s.create(db, req, models.CreatorTypeSeller, &shopID)
}

func (s *VoucherServiceImpl) create(db *gorm.DB, req *dto.CreateVoucherRequest, creator models.CreatorType, shopID *string) (*models.Voucher, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.ValidationError("end_date must be after start_date")
	}
	if req.DiscountType == models.DiscountTypePercent && req.DiscountValue > 100 {
		return nil, apperrors.ValidationError("percent discount cannot exceed 100")
	}

	voucher := &models.Voucher{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		VoucherType:   req.VoucherType,
		CreatorType:   creator,
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		ShopID:        shopID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        models.VoucherStatusActive,
	}
	if err := s.voucherRepo.Create(db, voucher); err != nil {
		if apperrors.Is(err, repositories.ErrVoucherCodeTaken) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return voucher, nil
}

func (s *VoucherServiceImpl) GetByID(db *gorm.DB, id string) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrVoucherNotFound) {
			return nil, apperrors.ErrVoucherNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return voucher, nil
}

func (s *VoucherServiceImpl) ListForShop(db *gorm.DB, shopID string) ([]models.Voucher, error) {
	vouchers, err := s.voucherRepo.FindByShopID(db, shopID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return vouchers, nil
}

func (s *VoucherServiceImpl) ListAdminVouchers(db *gorm.DB) ([]models.Voucher, error) {
	vouchers, err := s.voucherRepo.FindAdminVouchers(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return vouchers, nil
}

func (s *VoucherServiceImpl) Update(db *gorm.DB, id string, req *dto.UpdateVoucherRequest) (*models.Voucher, error) {
	voucher, err := s.GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountValue != nil {
		voucher.DiscountValue = *req.DiscountValue
	}
	if req.MinOrderValue != nil {
		voucher.MinOrderValue = *req.MinOrderValue
	}
	if req.StartDate != nil {
		voucher.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		voucher.EndDate = *req.EndDate
	}
	if req.Status != nil {
		voucher.Status = *req.Status
	}
	if !voucher.EndDate.After(voucher.StartDate) {
		return nil, apperrors.ValidationError("end_date must be after start_date")
	}

	if err := s.voucherRepo.Update(db, voucher); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return voucher, nil
}

func (s *VoucherServiceImpl) Delete(db *gorm.DB, id string) error {
	if _, err := s.GetByID(db, id); err != nil {
		return err
	}
	if err := s.voucherRepo.Delete(db, id); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ValidateVoucher - упорядоченная цепочка проверок одного ваучера.
// Порядок фиксирован, первая неудача обрывает проверку:
// создатель -> тип -> магазин -> статус -> окно действия -> минимальная сумма.
func (s *VoucherServiceImpl) ValidateVoucher(voucher *models.Voucher, c VoucherConstraints) error {
	if voucher == nil {
		return apperrors.ErrVoucherNotFound
	}
	if voucher.CreatorType != c.CreatorType {
		return apperrors.ErrVoucherTypeMismatch
	}
	if voucher.VoucherType != c.VoucherType {
		return apperrors.ErrVoucherTypeMismatch
	}
	if c.ExpectedShopID != nil {
		if voucher.ShopID == nil || *voucher.ShopID != *c.ExpectedShopID {
			return apperrors.ErrVoucherShopMismatch
		}
	}
	if voucher.Status != models.VoucherStatusActive {
		return apperrors.ErrVoucherNotActive
	}
	if c.Now.Before(voucher.StartDate) {
		return apperrors.ErrVoucherNotYetActive
	}
	if c.Now.After(voucher.EndDate) {
		return apperrors.ErrVoucherExpired
	}
	// Граница включающая: total == min_order_value проходит
	if c.Total < voucher.MinOrderValue {
		return apperrors.ErrVoucherMinimumNotMet(voucher.Code, voucher.MinOrderValue)
	}
	return nil
}

// ValidateCheckoutVouchers - правила совместимости набора ваучеров:
// не больше одного admin shipping, одного admin product и одного
// ваучера на магазин. Дубликаты магазинов отклоняются ДО провалидации
// отдельных ваучеров.
func (s *VoucherServiceImpl) ValidateCheckoutVouchers(db *gorm.DB, codes []string, shopSubtotals map[string]float64, grandTotal, shippingFee float64, now time.Time) (*CheckoutDiscounts, error) {
	vouchers := make([]*models.Voucher, 0, len(codes))
	for _, code := range codes {
		voucher, err := s.voucherRepo.FindByCode(db, code)
		if err != nil {
			if apperrors.Is(err, repositories.ErrVoucherNotFound) {
				return nil, apperrors.ErrVoucherNotFound
			}
			return nil, apperrors.InternalError(err)
		}
		vouchers = append(vouchers, voucher)
	}

	// Структурная проверка набора до индивидуальных проверок
	var adminShipping, adminProduct *models.Voucher
	shopVouchers := make(map[string]*models.Voucher)
	for _, v := range vouchers {
		switch {
		case v.CreatorType == models.CreatorTypeAdmin && v.VoucherType == models.VoucherTypeShipping:
			if adminShipping != nil {
				return nil, apperrors.ErrInvalidOperation("voucher", "Only one admin shipping voucher can be applied")
			}
			adminShipping = v
		case v.CreatorType == models.CreatorTypeAdmin && v.VoucherType == models.VoucherTypeProduct:
			if adminProduct != nil {
				return nil, apperrors.ErrInvalidOperation("voucher", "Only one admin product voucher can be applied")
			}
			adminProduct = v
		default:
			if v.ShopID == nil {
				return nil, apperrors.ErrVoucherShopMismatch
			}
			if _, dup := shopVouchers[*v.ShopID]; dup {
				return nil, apperrors.ErrDuplicateShopVoucher
			}
			if _, inCart := shopSubtotals[*v.ShopID]; !inCart {
				return nil, apperrors.ErrVoucherShopNotInCart
			}
			shopVouchers[*v.ShopID] = v
		}
	}

	result := &CheckoutDiscounts{}

	// Admin-ваучеры проверяются против всей корзины
	if adminShipping != nil {
		if err := s.ValidateVoucher(adminShipping, VoucherConstraints{
			CreatorType: models.CreatorTypeAdmin,
			VoucherType: models.VoucherTypeShipping,
			Total:       grandTotal,
			Now:         now,
		}); err != nil {
			return nil, err
		}
		discount := applyDiscount(adminShipping, shippingFee)
		result.ShippingDiscount += discount
		result.Applied = append(result.Applied, newAppliedVoucher(adminShipping, discount))
	}

	if adminProduct != nil {
		if err := s.ValidateVoucher(adminProduct, VoucherConstraints{
			CreatorType: models.CreatorTypeAdmin,
			VoucherType: models.VoucherTypeProduct,
			Total:       grandTotal,
			Now:         now,
		}); err != nil {
			return nil, err
		}
		discount := applyDiscount(adminProduct, grandTotal)
		result.ProductDiscount += discount
		result.Applied = append(result.Applied, newAppliedVoucher(adminProduct, discount))
	}

	// Ваучер магазина проверяется против подытога этого магазина
	for shopID, v := range shopVouchers {
		subtotal := shopSubtotals[shopID]
		expected := shopID
		if err := s.ValidateVoucher(v, VoucherConstraints{
			CreatorType:    models.CreatorTypeSeller,
			VoucherType:    models.VoucherTypeProduct,
			ExpectedShopID: &expected,
			Total:          subtotal,
			Now:            now,
		}); err != nil {
			return nil, err
		}
		discount := applyDiscount(v, subtotal)
		result.ProductDiscount += discount
		result.Applied = append(result.Applied, newAppliedVoucher(v, discount))
	}

	return result, nil
}

// applyDiscount считает размер скидки, не позволяя ей превысить базу
func applyDiscount(v *models.Voucher, base float64) float64 {
	var discount float64
	switch v.DiscountType {
	case models.DiscountTypePercent:
		discount = base * v.DiscountValue / 100
	case models.DiscountTypeAmount:
		discount = v.DiscountValue
	}
	if discount > base {
		discount = base
	}
	return discount
}

func newAppliedVoucher(v *models.Voucher, discount float64) dto.AppliedVoucher {
	return dto.AppliedVoucher{
		Code:        v.Code,
		VoucherType: v.VoucherType,
		CreatorType: v.CreatorType,
		ShopID:      v.ShopID,
		Discount:    discount,
	}
}
