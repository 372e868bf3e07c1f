package services

import (
	"context"
	"encoding/json"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/internal/notifier"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationService interface {
	// Notify пишет уведомление в БД и отдает событие в очередь доставки.
	// Fire-and-forget: отказ брокера не ломает вызывающую операцию.
	Notify(ctx context.Context, db *gorm.DB, userID, notifType, title, message string, data map[string]interface{}, actionURL string)

	List(db *gorm.DB, userID string, criteria repositories.NotificationCriteria) ([]dto.NotificationResponse, int64, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) error
	UnreadCount(db *gorm.DB, userID string) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	publisher        notifier.Publisher
	now              func() time.Time
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, publisher notifier.Publisher, now func() time.Time) NotificationService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = notifier.NoopPublisher{}
	}
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		now:              now,
	}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, db *gorm.DB, userID, notifType, title, message string, data map[string]interface{}, actionURL string) {
	notification := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			notification.Data = datatypes.JSON(raw)
		}
	}

	if err := s.notificationRepo.Create(db, notification); err != nil {
		logger.Error("failed to store notification", "error", err, "user_id", userID, "type", notifType)
		return
	}

	// Доставка асинхронная: хендлер запроса не ждет брокера
	go func() {
		event := notifier.Event{
			UserID:    userID,
			Type:      notifType,
			Title:     title,
			Message:   message,
			Data:      data,
			ActionURL: actionURL,
			CreatedAt: s.now().UTC(),
		}
		if err := s.publisher.Enqueue(context.Background(), event); err != nil {
			logger.Error("failed to enqueue notification event", "error", err, "user_id", userID)
		}
	}()
}

func (s *NotificationServiceImpl) List(db *gorm.DB, userID string, criteria repositories.NotificationCriteria) ([]dto.NotificationResponse, int64, error) {
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, criteria)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, newNotificationResponse(&notifications[i]))
	}
	return responses, total, nil
}

func (s *NotificationServiceImpl) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if notification.UserID != userID {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.notificationRepo.MarkAsRead(db, notificationID, s.now()); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(db *gorm.DB, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(db, userID, s.now()); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *NotificationServiceImpl) UnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func newNotificationResponse(n *models.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if len(n.Data) > 0 {
		if err := json.Unmarshal(n.Data, &resp.Data); err != nil {
			logger.Error("failed to decode notification data", "error", err, "notification_id", n.ID)
		}
	}
	return resp
}
