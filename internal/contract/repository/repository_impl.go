package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/contractflow/internal/contract/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const contractColumns = `id, store_id, customer_id, company_id, company_location_id, name, note, po_number,
	 currency_code, status, start_date, end_date, interval_value, interval_unit, delivery_anchor,
	 next_order_creation_date, order_total, shipping_method_name, shipping_method_id, shipping_cost,
	 discount_type, discount_value, approver_id, approver_name, metadata, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscription_contracts (`+contractColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ID,
		contract.StoreID,
		contract.CustomerID,
		contract.CompanyID,
		contract.CompanyLocationID,
		contract.Name,
		contract.Note,
		contract.PONumber,
		contract.CurrencyCode,
		contract.Status,
		contract.StartDate,
		contract.EndDate,
		contract.IntervalValue,
		contract.IntervalUnit,
		contract.DeliveryAnchor,
		contract.NextOrderCreationDate,
		contract.OrderTotal,
		contract.ShippingMethodName,
		contract.ShippingMethodID,
		contract.ShippingCost,
		contract.DiscountType,
		contract.DiscountValue,
		contract.ApproverID,
		contract.ApproverName,
		contract.Metadata,
		contract.CreatedAt,
		contract.UpdatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []domain.ContractLine) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) (*domain.Contract, error) {
	var c domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM subscription_contracts WHERE store_id = ? AND id = ?`,
		storeID,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) (*domain.Contract, error) {
	var c domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM subscription_contracts WHERE store_id = ? AND id = ? FOR UPDATE`,
		storeID,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID) ([]domain.ContractLine, error) {
	var lines []domain.ContractLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, contract_id, store_id, variant_id, sku, quantity, unit_price, customer_partner_number, created_at
		 FROM subscription_contract_lines WHERE store_id = ? AND contract_id = ? ORDER BY id ASC`,
		storeID,
		contractID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	if contract == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE subscription_contracts
		 SET name = ?, note = ?, po_number = ?, currency_code = ?, start_date = ?, end_date = ?,
		     interval_value = ?, interval_unit = ?, delivery_anchor = ?, next_order_creation_date = ?,
		     order_total = ?, shipping_method_name = ?, shipping_method_id = ?, shipping_cost = ?,
		     discount_type = ?, discount_value = ?, metadata = ?, updated_at = ?
		 WHERE store_id = ? AND id = ?`,
		contract.Name,
		contract.Note,
		contract.PONumber,
		contract.CurrencyCode,
		contract.StartDate,
		contract.EndDate,
		contract.IntervalValue,
		contract.IntervalUnit,
		contract.DeliveryAnchor,
		contract.NextOrderCreationDate,
		contract.OrderTotal,
		contract.ShippingMethodName,
		contract.ShippingMethodID,
		contract.ShippingCost,
		contract.DiscountType,
		contract.DiscountValue,
		contract.Metadata,
		contract.UpdatedAt,
		contract.StoreID,
		contract.ID,
	).Error
}

func (r *repo) UpdateLifecycle(ctx context.Context, db *gorm.DB, contract *domain.Contract, observedUpdatedAt time.Time) (bool, error) {
	if contract == nil {
		return false, gorm.ErrInvalidData
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE subscription_contracts
		 SET status = ?, next_order_creation_date = ?, approver_id = ?, approver_name = ?, updated_at = ?
		 WHERE store_id = ? AND id = ? AND updated_at = ?`,
		contract.Status,
		contract.NextOrderCreationDate,
		contract.ApproverID,
		contract.ApproverName,
		contract.UpdatedAt,
		contract.StoreID,
		contract.ID,
		observedUpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ReplaceLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID, lines []domain.ContractLine) error {
	if err := r.DeleteLines(ctx, db, storeID, contractID); err != nil {
		return err
	}
	return r.InsertLines(ctx, db, lines)
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, storeID string, contractID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM subscription_contract_lines WHERE store_id = ? AND contract_id = ?`,
		storeID,
		contractID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, storeID string, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM subscription_contracts WHERE store_id = ? AND id = ?`,
		storeID,
		id,
	).Error
}
