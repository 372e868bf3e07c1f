package repositories

import (
	"errors"
	"time"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrRefreshTokenNotFound возвращается, когда refresh-токен не найден в БД
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository определяет интерфейс для операций с refresh-токенами
type RefreshTokenRepository interface {
	// Create создает новую запись о refresh-токене
	Create(db *gorm.DB, token *models.RefreshToken) error

	// FindByHash находит refresh-токен по sha256-хешу его значения
	FindByHash(db *gorm.DB, tokenHash string) (*models.RefreshToken, error)

	// MarkRotated атомарно помечает токен ротированным:
	// is_revoked=true, replaced_by=<id нового>, last_used_at=now,
	// но ТОЛЬКО если токен еще не отозван (WHERE is_revoked=false).
	// Возвращает true, если обновление прошло; false - если строку
	// уже отозвали (проигрыш гонки двух одновременных refresh).
	MarkRotated(db *gorm.DB, tokenID, replacedByID string, now time.Time) (bool, error)

	// RevokeByHash отзывает один токен напрямую (logout). Идемпотентно.
	RevokeByHash(db *gorm.DB, tokenHash string) error

	// RevokeByID отзывает один токен напрямую по id. Идемпотентно.
	RevokeByID(db *gorm.DB, tokenID string) error

	// RevokeAllForUser отзывает все живые токены пользователя
	// (reuse-detection, бан, "выйти везде")
	RevokeAllForUser(db *gorm.DB, userID string) error

	// DeleteExpiredOrRevoked удаляет строки, которые истекли или отозваны.
	// Отозванные строки не несут живой capability, удалять безопасно в любой момент.
	DeleteExpiredOrRevoked(db *gorm.DB, now time.Time) (int64, error)

	// FindByUserID находит все токены пользователя (для администрирования)
	FindByUserID(db *gorm.DB, userID string) ([]models.RefreshToken, error)
}

type refreshTokenRepository struct{}

// NewRefreshTokenRepository создает новый экземпляр RefreshTokenRepository
func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindByHash(db *gorm.DB, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := db.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// MarkRotated - условный UPDATE вместо read-modify-write: две конкурентные
// ротации одного токена не могут выиграть обе, победителя определяет БД.
func (r *refreshTokenRepository) MarkRotated(db *gorm.DB, tokenID, replacedByID string, now time.Time) (bool, error) {
	result := db.Model(&models.RefreshToken{}).
		Where("id = ? AND is_revoked = ?", tokenID, false).
		Updates(map[string]interface{}{
			"is_revoked":   true,
			"replaced_by":  replacedByID,
			"last_used_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *refreshTokenRepository) RevokeByHash(db *gorm.DB, tokenHash string) error {
	// Идемпотентно: повторный отзыв уже отозванного токена - не ошибка
	return db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND is_revoked = ?", tokenHash, false).
		Update("is_revoked", true).Error
}

func (r *refreshTokenRepository) RevokeByID(db *gorm.DB, tokenID string) error {
	return db.Model(&models.RefreshToken{}).
		Where("id = ? AND is_revoked = ?", tokenID, false).
		Update("is_revoked", true).Error
}

func (r *refreshTokenRepository) RevokeAllForUser(db *gorm.DB, userID string) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
}

func (r *refreshTokenRepository) DeleteExpiredOrRevoked(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at < ? OR is_revoked = ?", now, true).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) FindByUserID(db *gorm.DB, userID string) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}
