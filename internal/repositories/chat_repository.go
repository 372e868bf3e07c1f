package repositories

import (
	"errors"
	"time"

	"bazaar_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDialogNotFound = errors.New("dialog not found")
)

type ChatRepository interface {
	// FindOrCreateDialog возвращает диалог пары (buyer, shop), создавая при отсутствии
	FindOrCreateDialog(db *gorm.DB, buyerID, shopID string) (*models.Dialog, error)
	FindDialogByID(db *gorm.DB, id string) (*models.Dialog, error)
	FindDialogsByBuyer(db *gorm.DB, buyerID string) ([]models.Dialog, error)
	FindDialogsByShop(db *gorm.DB, shopID string) ([]models.Dialog, error)

	CreateMessage(db *gorm.DB, message *models.Message) error
	FindMessages(db *gorm.DB, dialogID string, page, pageSize int) ([]models.Message, int64, error)
	// MarkMessagesRead помечает прочитанными все входящие сообщения диалога
	MarkMessagesRead(db *gorm.DB, dialogID, readerID string, now time.Time) error
}

type chatRepository struct{}

func NewChatRepository() ChatRepository {
	return &chatRepository{}
}

func (r *chatRepository) FindOrCreateDialog(db *gorm.DB, buyerID, shopID string) (*models.Dialog, error) {
	var dialog models.Dialog
	err := db.Where("buyer_id = ? AND shop_id = ?", buyerID, shopID).First(&dialog).Error
	if err == nil {
		return &dialog, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dialog = models.Dialog{BuyerID: buyerID, ShopID: shopID}
	if err := db.Create(&dialog).Error; err != nil {
		return nil, err
	}
	return &dialog, nil
}

func (r *chatRepository) FindDialogByID(db *gorm.DB, id string) (*models.Dialog, error) {
	var dialog models.Dialog
	if err := db.First(&dialog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDialogNotFound
		}
		return nil, err
	}
	return &dialog, nil
}

func (r *chatRepository) FindDialogsByBuyer(db *gorm.DB, buyerID string) ([]models.Dialog, error) {
	var dialogs []models.Dialog
	err := db.Where("buyer_id = ?", buyerID).
		Order("last_message_at DESC NULLS LAST").
		Find(&dialogs).Error
	return dialogs, err
}

func (r *chatRepository) FindDialogsByShop(db *gorm.DB, shopID string) ([]models.Dialog, error) {
	var dialogs []models.Dialog
	err := db.Where("shop_id = ?", shopID).
		Order("last_message_at DESC NULLS LAST").
		Find(&dialogs).Error
	return dialogs, err
}

func (r *chatRepository) CreateMessage(db *gorm.DB, message *models.Message) error {
	if err := db.Create(message).Error; err != nil {
		return err
	}
	return db.Model(&models.Dialog{}).
		Where("id = ?", message.DialogID).
		Update("last_message_at", message.CreatedAt).Error
}

func (r *chatRepository) FindMessages(db *gorm.DB, dialogID string, page, pageSize int) ([]models.Message, int64, error) {
	var total int64
	if err := db.Model(&models.Message{}).Where("dialog_id = ?", dialogID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := db.Where("dialog_id = ?", dialogID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&messages).Error
	return messages, total, err
}

func (r *chatRepository) MarkMessagesRead(db *gorm.DB, dialogID, readerID string, now time.Time) error {
	return db.Model(&models.Message{}).
		Where("dialog_id = ? AND sender_id <> ? AND is_read = ?", dialogID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}
