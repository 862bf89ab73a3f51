package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusDeclined:
		return true
	default:
		return false
	}
}

// TransitionAllowed reports whether a contract may move from current to
// target. Deletion is not a transition; it is guarded separately and only
// permitted while pending.
func TransitionAllowed(current, target Status) bool {
	switch current {
	case StatusPending:
		return target == StatusActive || target == StatusDeclined
	case StatusActive:
		return target == StatusPaused || target == StatusCancelled || target == StatusCompleted
	case StatusPaused:
		return target == StatusActive || target == StatusCancelled
	default:
		return false
	}
}

// Contract is one recurring-order agreement with a delivery cadence.
type Contract struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID           string       `gorm:"type:text;not null;index" json:"store_id"`
	CustomerID        snowflake.ID `gorm:"not null" json:"customer_id"`
	CompanyID         snowflake.ID `gorm:"not null" json:"company_id"`
	CompanyLocationID snowflake.ID `gorm:"not null;index" json:"company_location_id"`

	Name         string  `gorm:"type:text;not null" json:"name"`
	Note         *string `gorm:"type:text" json:"note,omitempty"`
	PONumber     *string `gorm:"column:po_number;type:text" json:"po_number,omitempty"`
	CurrencyCode string  `gorm:"type:varchar(3);not null" json:"currency_code"`
	Status       Status  `gorm:"type:text;not null;index" json:"status"`

	StartDate             time.Time `gorm:"not null" json:"start_date"`
	EndDate               time.Time `gorm:"not null" json:"end_date"`
	IntervalValue         int       `gorm:"not null" json:"interval_value"`
	IntervalUnit          string    `gorm:"type:text;not null" json:"interval_unit"`
	DeliveryAnchor        *int      `gorm:"" json:"delivery_anchor,omitempty"`
	NextOrderCreationDate time.Time `gorm:"not null;index" json:"next_order_creation_date"`

	OrderTotal         float64 `gorm:"not null" json:"order_total"`
	ShippingMethodName string  `gorm:"type:text" json:"shipping_method_name"`
	ShippingMethodID   *string `gorm:"type:text" json:"shipping_method_id,omitempty"`
	ShippingCost       float64 `gorm:"" json:"shipping_cost"`
	DiscountType       *string `gorm:"type:text" json:"discount_type,omitempty"`
	DiscountValue      *float64 `gorm:"" json:"discount_value,omitempty"`

	ApproverID   *snowflake.ID `gorm:"" json:"approver_id,omitempty"`
	ApproverName *string       `gorm:"type:text" json:"approver_name,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (Contract) TableName() string { return "subscription_contracts" }

// ContractLine is one product line of a contract. Lines are owned exclusively
// by their contract and replaced as a whole set on update.
type ContractLine struct {
	ID                    snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractID            snowflake.ID `gorm:"not null;index" json:"contract_id"`
	StoreID               string       `gorm:"type:text;not null" json:"store_id"`
	VariantID             snowflake.ID `gorm:"not null" json:"variant_id"`
	SKU                   string       `gorm:"type:text;not null" json:"sku"`
	Quantity              int          `gorm:"not null" json:"quantity"`
	UnitPrice             float64      `gorm:"not null" json:"unit_price"`
	CustomerPartnerNumber *string      `gorm:"type:text" json:"customer_partner_number,omitempty"`
	CreatedAt             time.Time    `gorm:"not null" json:"created_at"`
}

func (ContractLine) TableName() string { return "subscription_contract_lines" }
