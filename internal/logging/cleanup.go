package logging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
)

// Retention deletes system_logs rows older than a fixed number of days once a
// day.
type Retention struct {
	db        *gorm.DB
	days      int
	scheduler *gocron.Scheduler
}

func NewRetention(db *gorm.DB, days int) *Retention {
	return &Retention{
		db:        db,
		days:      days,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the daily purge at 03:00 UTC.
func (r *Retention) Start() error {
	_, err := r.scheduler.Every(1).Day().At("03:00").Do(func() {
		if _, err := r.Purge(time.Now()); err != nil {
			slog.Error("log cleanup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule log cleanup: %w", err)
	}
	r.scheduler.StartAsync()
	return nil
}

func (r *Retention) Stop() {
	r.scheduler.Stop()
}

// Purge deletes rows older than the retention window relative to now.
func (r *Retention) Purge(now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -r.days)
	result := r.db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected, "cutoff", cutoff)
	}
	return result.RowsAffected, nil
}
