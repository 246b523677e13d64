package logging

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

// Purge deletes system_logs records older than cutoff.
func Purge(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}

// StartCleanup purges records older than retentionDays once a day until
// ctx is cancelled. A non-positive retention disables it.
func StartCleanup(ctx context.Context, db *gorm.DB, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := Purge(ctx, db, time.Now().AddDate(0, 0, -retentionDays))
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if n > 0 {
					slog.Info("log cleanup completed", "deleted", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
