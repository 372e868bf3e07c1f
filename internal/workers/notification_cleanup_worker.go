package workers

import (
	"context"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/repositories"

	"gorm.io/gorm"
)

// NotificationCleanupWorker удаляет прочитанные уведомления старше retention
type NotificationCleanupWorker struct {
	db               *gorm.DB
	notificationRepo repositories.NotificationRepository
	interval         time.Duration
	retention        time.Duration
}

func NewNotificationCleanupWorker(db *gorm.DB, notificationRepo repositories.NotificationRepository, interval, retention time.Duration) *NotificationCleanupWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &NotificationCleanupWorker{
		db:               db,
		notificationRepo: notificationRepo,
		interval:         interval,
		retention:        retention,
	}
}

func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *NotificationCleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification cleanup worker stopped")
			return
		case <-ticker.C:
			deleted, err := w.notificationRepo.DeleteReadOlderThan(w.db, time.Now().Add(-w.retention))
			logger.WorkerLog("notification_cleanup", "delete_read_older_than", err)
			if err == nil && deleted > 0 {
				logger.Info("deleted read notifications", "worker", "notification_cleanup", "count", deleted)
			}
		}
	}
}
