package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/schedule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindEligible(ctx context.Context, db *gorm.DB, storeID string, now time.Time) ([]contractdomain.Contract, error) {
	var contracts []contractdomain.Contract
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Where("status = ?", contractdomain.StatusActive).
		Where("start_date <= ?", now).
		Where("next_order_creation_date <= ?", now).
		Order("next_order_creation_date ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repo) DistinctDueStores(ctx context.Context, db *gorm.DB, now time.Time) ([]string, error) {
	var stores []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT store_id FROM subscription_contracts
		 WHERE status = ? AND start_date <= ? AND next_order_creation_date <= ?`,
		contractdomain.StatusActive,
		now,
		now,
	).Scan(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) ClaimNextOrderDate(ctx context.Context, db *gorm.DB, contract *contractdomain.Contract, next time.Time, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE subscription_contracts
		 SET next_order_creation_date = ?, updated_at = ?
		 WHERE store_id = ? AND id = ? AND status = ? AND next_order_creation_date = ?`,
		next,
		now,
		contract.StoreID,
		contract.ID,
		contractdomain.StatusActive,
		contract.NextOrderCreationDate,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, contract *contractdomain.Contract, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscription_contracts
		 SET status = ?, next_order_creation_date = ?, updated_at = ?
		 WHERE store_id = ? AND id = ?`,
		contractdomain.StatusCompleted,
		now,
		now,
		contract.StoreID,
		contract.ID,
	).Error
}

func (r *repo) AppendLog(ctx context.Context, db *gorm.DB, entry *domain.ScheduleLogEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO schedule_log_entries (id, store_id, contract_id, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.StoreID,
		entry.ContractID,
		entry.Status,
		entry.Message,
		entry.CreatedAt,
	).Error
}

func (r *repo) ListLogs(ctx context.Context, db *gorm.DB, storeID string, contractID *snowflake.ID, limit int) ([]domain.ScheduleLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	stmt := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if contractID != nil {
		stmt = stmt.Where("contract_id = ?", *contractID)
	}

	var entries []domain.ScheduleLogEntry
	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
