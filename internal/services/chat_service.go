package services

import (
	"context"
	"time"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ChatService interface {
	// StartDialog возвращает диалог покупателя с магазином, создавая при отсутствии
	StartDialog(db *gorm.DB, buyerID string, req *dto.StartDialogRequest) (*dto.DialogResponse, error)
	ListDialogs(db *gorm.DB, userID string, role models.UserRole) ([]dto.DialogResponse, error)
	SendMessage(ctx context.Context, db *gorm.DB, dialogID, senderID string, role models.UserRole, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMessages(db *gorm.DB, dialogID, readerID string, role models.UserRole, page, pageSize int) ([]dto.MessageResponse, int64, error)
}

type ChatServiceImpl struct {
	chatRepo repositories.ChatRepository
	shopRepo repositories.ShopRepository
	notifier NotificationService
	now      func() time.Time
}

func NewChatService(chatRepo repositories.ChatRepository, shopRepo repositories.ShopRepository, notifier NotificationService, now func() time.Time) ChatService {
	if now == nil {
		now = time.Now
	}
	return &ChatServiceImpl{chatRepo: chatRepo, shopRepo: shopRepo, notifier: notifier, now: now}
}

func (s *ChatServiceImpl) StartDialog(db *gorm.DB, buyerID string, req *dto.StartDialogRequest) (*dto.DialogResponse, error) {
	if _, err := s.shopRepo.FindByID(db, req.ShopID); err != nil {
		if apperrors.Is(err, repositories.ErrShopNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	dialog, err := s.chatRepo.FindOrCreateDialog(db, buyerID, req.ShopID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return newDialogResponse(dialog), nil
}

func (s *ChatServiceImpl) ListDialogs(db *gorm.DB, userID string, role models.UserRole) ([]dto.DialogResponse, error) {
	var dialogs []models.Dialog
	var err error

	if role == models.UserRoleSeller {
		shop, shopErr := s.shopRepo.FindByOwnerID(db, userID)
		if shopErr != nil {
			if apperrors.Is(shopErr, repositories.ErrShopNotFound) {
				return []dto.DialogResponse{}, nil
			}
			return nil, apperrors.InternalError(shopErr)
		}
		dialogs, err = s.chatRepo.FindDialogsByShop(db, shop.ID)
	} else {
		dialogs, err = s.chatRepo.FindDialogsByBuyer(db, userID)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.DialogResponse, 0, len(dialogs))
	for i := range dialogs {
		responses = append(responses, *newDialogResponse(&dialogs[i]))
	}
	return responses, nil
}

func (s *ChatServiceImpl) SendMessage(ctx context.Context, db *gorm.DB, dialogID, senderID string, role models.UserRole, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	dialog, err := s.authorizedDialog(db, dialogID, senderID, role)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		DialogID: dialogID,
		SenderID: senderID,
		Body:     req.Body,
	}
	message.CreatedAt = s.now()
	if err := s.chatRepo.CreateMessage(db, message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyRecipient(ctx, db, dialog, senderID)

	return newMessageResponse(message), nil
}

func (s *ChatServiceImpl) ListMessages(db *gorm.DB, dialogID, readerID string, role models.UserRole, page, pageSize int) ([]dto.MessageResponse, int64, error) {
	if _, err := s.authorizedDialog(db, dialogID, readerID, role); err != nil {
		return nil, 0, err
	}

	messages, total, err := s.chatRepo.FindMessages(db, dialogID, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	// Чтение диалога помечает входящие сообщения прочитанными
	if err := s.chatRepo.MarkMessagesRead(db, dialogID, readerID, s.now()); err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, *newMessageResponse(&messages[i]))
	}
	return responses, total, nil
}

// authorizedDialog проверяет, что участник имеет доступ к диалогу:
// покупатель - своей стороной, продавец - стороной магазина
func (s *ChatServiceImpl) authorizedDialog(db *gorm.DB, dialogID, userID string, role models.UserRole) (*models.Dialog, error) {
	dialog, err := s.chatRepo.FindDialogByID(db, dialogID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDialogNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	switch role {
	case models.UserRoleAdmin:
		return dialog, nil
	case models.UserRoleSeller:
		shop, err := s.shopRepo.FindByOwnerID(db, userID)
		if err != nil || shop.ID != dialog.ShopID {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return dialog, nil
	default:
		if dialog.BuyerID != userID {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return dialog, nil
	}
}

// notifyRecipient уведомляет вторую сторону диалога о новом сообщении
func (s *ChatServiceImpl) notifyRecipient(ctx context.Context, db *gorm.DB, dialog *models.Dialog, senderID string) {
	if s.notifier == nil {
		return
	}

	recipientID := dialog.BuyerID
	if senderID == dialog.BuyerID {
		shop, err := s.shopRepo.FindByID(db, dialog.ShopID)
		if err != nil {
			return
		}
		recipientID = shop.OwnerID
	}

	s.notifier.Notify(ctx, db, recipientID, repositories.NotificationTypeNewMessage,
		"Новое сообщение", "У вас новое сообщение в чате",
		map[string]interface{}{"dialog_id": dialog.ID}, "/chat/"+dialog.ID)
}

func newDialogResponse(d *models.Dialog) *dto.DialogResponse {
	resp := &dto.DialogResponse{
		ID:      d.ID,
		BuyerID: d.BuyerID,
		ShopID:  d.ShopID,
	}
	if d.LastMessageAt != nil {
		resp.LastMessageAt = d.LastMessageAt.Format(time.RFC3339)
	}
	return resp
}

func newMessageResponse(m *models.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:        m.ID,
		DialogID:  m.DialogID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
