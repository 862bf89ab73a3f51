package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []ContractLine) error
	FindByID(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) (*Contract, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) (*Contract, error)
	ListLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID) ([]ContractLine, error)
	Update(ctx context.Context, db *gorm.DB, contract *Contract) error
	// UpdateLifecycle persists status and date fields with an optimistic
	// check on the previously observed updated_at. It reports false when
	// the row changed underneath the caller.
	UpdateLifecycle(ctx context.Context, db *gorm.DB, contract *Contract, observedUpdatedAt time.Time) (bool, error)
	ReplaceLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID, lines []ContractLine) error
	DeleteLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID) error
	Delete(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) error
}
