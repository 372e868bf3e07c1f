package repositories

import (
	"errors"
	"strings"
	"time"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrVoucherCodeTaken     = errors.New("voucher code already in use")
)

type VoucherRepository interface {
	Create(db *gorm.DB, voucher *models.Voucher) error
	FindByID(db *gorm.DB, id string) (*models.Voucher, error)
	FindByCode(db *gorm.DB, code string) (*models.Voucher, error)
	FindByShopID(db *gorm.DB, shopID string) ([]models.Voucher, error)
	FindAdminVouchers(db *gorm.DB) ([]models.Voucher, error)
	Update(db *gorm.DB, voucher *models.Voucher) error
	UpdateStatus(db *gorm.DB, id string, status models.VoucherStatus) error
	Delete(db *gorm.DB, id string) error

	// MarkExpired переводит в expired все active-ваучеры с истекшим окном
	MarkExpired(db *gorm.DB, now time.Time) (int64, error)
}

type voucherRepository struct{}

func NewVoucherRepository() VoucherRepository {
	return &voucherRepository{}
}

func (r *voucherRepository) Create(db *gorm.DB, voucher *models.Voucher) error {
	if err := db.Create(voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrVoucherCodeTaken
		}
		return err
	}
	return nil
}

func (r *voucherRepository) FindByID(db *gorm.DB, id string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := db.First(&voucher, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByCode(db *gorm.DB, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByShopID(db *gorm.DB, shopID string) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepository) FindAdminVouchers(db *gorm.DB) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := db.Where("creator_type = ?", models.CreatorTypeAdmin).
		Order("created_at DESC").Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepository) Update(db *gorm.DB, voucher *models.Voucher) error {
	return db.Save(voucher).Error
}

func (r *voucherRepository) UpdateStatus(db *gorm.DB, id string, status models.VoucherStatus) error {
	result := db.Model(&models.Voucher{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVoucherNotFound
	}
	return nil
}

func (r *voucherRepository) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.Voucher{}, "id = ?", id).Error
}

func (r *voucherRepository) MarkExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Voucher{}).
		Where("status = ? AND end_date < ?", models.VoucherStatusActive, now).
		Update("status", models.VoucherStatusExpired)
	return result.RowsAffected, result.Error
}
