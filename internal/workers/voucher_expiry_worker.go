package workers

import (
	"context"
	"time"

	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/repositories"

	"gorm.io/gorm"
)

// VoucherExpiryWorker переводит в expired активные ваучеры,
// у которых закончилось окно действия. Валидация на чекауте
// проверяет даты сама, воркер лишь синхронизирует статус для витрины.
type VoucherExpiryWorker struct {
	db          *gorm.DB
	voucherRepo repositories.VoucherRepository
	interval    time.Duration
}

func NewVoucherExpiryWorker(db *gorm.DB, voucherRepo repositories.VoucherRepository, interval time.Duration) *VoucherExpiryWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &VoucherExpiryWorker{db: db, voucherRepo: voucherRepo, interval: interval}
}

func (w *VoucherExpiryWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *VoucherExpiryWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("voucher expiry worker stopped")
			return
		case <-ticker.C:
			expired, err := w.voucherRepo.MarkExpired(w.db, time.Now())
			logger.WorkerLog("voucher_expiry", "mark_expired", err)
			if err == nil && expired > 0 {
				logger.Info("marked vouchers expired", "worker", "voucher_expiry", "count", expired)
			}
		}
	}
}
