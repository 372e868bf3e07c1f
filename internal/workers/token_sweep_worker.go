package workers

import (
	"context"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/repositories"

	"gorm.io/gorm"
)

// TokenSweepWorker удаляет истекшие и отозванные refresh-токены.
// Отозванные строки не несут живой capability, удаление безопасно
// в любой момент и не влияет на reuse-detection активных цепочек.
type TokenSweepWorker struct {
	db        *gorm.DB
	tokenRepo repositories.RefreshTokenRepository
	interval  time.Duration
}

func NewTokenSweepWorker(db *gorm.DB, tokenRepo repositories.RefreshTokenRepository, interval time.Duration) *TokenSweepWorker {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &TokenSweepWorker{db: db, tokenRepo: tokenRepo, interval: interval}
}

// Start запускает периодическую чистку
func (w *TokenSweepWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *TokenSweepWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("token sweep worker stopped")
			return
		case <-ticker.C:
			deleted, err := w.tokenRepo.DeleteExpiredOrRevoked(w.db, time.Now())
			logger.WorkerLog("token_sweep", "delete_expired_or_revoked", err)
			if err == nil && deleted > 0 {
				logger.Info("swept refresh tokens", "worker", "token_sweep", "deleted", deleted)
			}
		}
	}
}
