package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// FindEligible returns the contracts due for billing in a store: active,
	// started, next order date arrived. Contracts past their end date are
	// still returned so the scheduler can close them out.
	FindEligible(ctx context.Context, db *gorm.DB, storeID string, now time.Time) ([]contractdomain.Contract, error)
	// DistinctDueStores lists stores holding at least one eligible contract.
	DistinctDueStores(ctx context.Context, db *gorm.DB, now time.Time) ([]string, error)
	// ClaimNextOrderDate conditionally advances a contract's next order date.
	// It reports false when another run already advanced the row.
	ClaimNextOrderDate(ctx context.Context, db *gorm.DB, contract *contractdomain.Contract, next time.Time, now time.Time) (bool, error)
	// MarkCompleted finishes a contract whose end date has passed, pinning
	// its next order date to the time of the run.
	MarkCompleted(ctx context.Context, db *gorm.DB, contract *contractdomain.Contract, now time.Time) error
	AppendLog(ctx context.Context, db *gorm.DB, entry *ScheduleLogEntry) error
	ListLogs(ctx context.Context, db *gorm.DB, storeID string, contractID *snowflake.ID, limit int) ([]ScheduleLogEntry, error)
}
