package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CallerContext identifies who is acting and on whose behalf. Every operation
// is store-scoped; most are additionally scoped by company location ownership.
type CallerContext struct {
	StoreID           string
	CompanyLocationID snowflake.ID
	ActorID           snowflake.ID
	ActorName         string
}

type LineInput struct {
	VariantID             snowflake.ID `json:"variant_id"`
	SKU                   string       `json:"sku"`
	Quantity              int          `json:"quantity"`
	UnitPrice             float64      `json:"unit_price"`
	CustomerPartnerNumber *string      `json:"customer_partner_number,omitempty"`
}

type CreateContractRequest struct {
	Caller CallerContext

	CustomerID     snowflake.ID
	CompanyID      snowflake.ID
	Name           string
	Note           *string
	PONumber       *string
	CurrencyCode   string
	StartDate      time.Time
	EndDate        time.Time
	IntervalValue  int
	IntervalUnit   string
	DeliveryAnchor *int

	OrderTotal         float64
	ShippingMethodName string
	ShippingMethodID   *string
	ShippingCost       float64
	DiscountType       *string
	DiscountValue      *float64

	Metadata map[string]any
	Lines    []LineInput
}

type CreateContractResponse struct {
	ID     snowflake.ID `json:"id"`
	Status Status       `json:"status"`
}

// UpdateContractRequest is a patch: nil fields keep the stored value. A
// non-nil Lines slice replaces the entire line set.
type UpdateContractRequest struct {
	Caller CallerContext
	ID     snowflake.ID

	Name           *string
	Note           *string
	PONumber       *string
	CurrencyCode   *string
	StartDate      *time.Time
	EndDate        *time.Time
	IntervalValue  *int
	IntervalUnit   *string
	DeliveryAnchor *int

	OrderTotal         *float64
	ShippingMethodName *string
	ShippingMethodID   *string
	ShippingCost       *float64
	DiscountType       *string
	DiscountValue      *float64

	Lines []LineInput
}

type UpdateContractResponse struct {
	ID      snowflake.ID `json:"id"`
	Status  Status       `json:"status"`
	Message string       `json:"message"`
}

type ContractWithLines struct {
	Contract
	Lines []ContractLine `json:"lines"`
}

// ActionResponse is the result of a single lifecycle operation.
type ActionResponse struct {
	Success               bool      `json:"success"`
	Message               string    `json:"message,omitempty"`
	Status                Status    `json:"status"`
	Rescheduled           bool      `json:"rescheduled,omitempty"`
	NextOrderCreationDate time.Time `json:"next_order_creation_date,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateContractRequest) (CreateContractResponse, error)
	Update(ctx context.Context, req UpdateContractRequest) (UpdateContractResponse, error)
	GetByID(ctx context.Context, caller CallerContext, id snowflake.ID) (ContractWithLines, error)
	Approve(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
	Decline(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
	Pause(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
	Resume(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
	Skip(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
	Delete(ctx context.Context, caller CallerContext, id snowflake.ID) (ActionResponse, error)
}
