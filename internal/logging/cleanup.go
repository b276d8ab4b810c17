package logging

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

// PurgeOlderThan deletes system_logs older than the retention window.
func PurgeOlderThan(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup schedules a daily purge. Stop the returned scheduler on
// shutdown.
func StartCleanup(db *gorm.DB, retentionDays int) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc("@daily", func() {
		deleted, err := PurgeOlderThan(db, retentionDays, time.Now())
		if err != nil {
			slog.Error("log cleanup failed", "error", err.Error())
			return
		}
		if deleted > 0 {
			slog.Info("log cleanup completed", "deleted", deleted)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
