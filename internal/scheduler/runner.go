package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/railzwaylabs/contractflow/internal/interval"
	"go.uber.org/zap"
)

// RunForever ticks on the configured interval and triggers a scheduling pass
// for every store that has at least one due contract. It returns when the
// context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	tick := s.cfg.Interval
	if tick <= 0 {
		tick = time.Minute
	}

	s.log.Info("scheduler loop started", zap.Duration("interval", tick))
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	prune := time.NewTicker(24 * time.Hour)
	defer prune.Stop()
	_ = s.PruneScheduleLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler loop stopping")
			s.Wait()
			return
		case <-ticker.C:
			s.runDueStores(ctx)
		case <-prune.C:
			_ = s.PruneScheduleLog(ctx)
		}
	}
}

func (s *Scheduler) runDueStores(ctx context.Context) {
	now := interval.DateOnly(s.clock.Now(ctx))
	stores, err := s.schedules.DistinctDueStores(ctx, s.db, now)
	if err != nil {
		s.log.Error("failed to list stores with due contracts", zap.Error(err))
		return
	}

	for _, storeID := range stores {
		if _, err := s.Run(ctx, storeID); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				continue
			}
			s.log.Error("scheduling pass failed",
				zap.Error(err),
				zap.String("store_id", storeID),
			)
		}
	}
}
