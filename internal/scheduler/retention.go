package scheduler

import (
	"context"

	scheduledomain "github.com/railzwaylabs/contractflow/internal/schedule/domain"
	"go.uber.org/zap"
)

// PruneScheduleLog deletes schedule log entries older than the configured
// retention window. The log is append-only; pruning is the only mutation it
// ever sees.
func (s *Scheduler) PruneScheduleLog(ctx context.Context) error {
	retentionDays := s.cfg.LogRetentionDays
	if retentionDays <= 0 {
		s.log.Info("schedule log retention disabled", zap.Int("days", retentionDays))
		return nil
	}

	cutoff := s.clock.Now(ctx).AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Delete(&scheduledomain.ScheduleLogEntry{}, "created_at < ?", cutoff)
	if result.Error != nil {
		s.log.Error("schedule log cleanup failed", zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected > 0 {
		s.log.Info("schedule log entries pruned",
			zap.Int64("deleted", result.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
