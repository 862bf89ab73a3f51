package commerce

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"go.uber.org/zap"
)

// Order is the commerce backend's acknowledgement of a created order.
type Order struct {
	ID          snowflake.ID `json:"id"`
	OrderNumber string       `json:"order_number"`
}

// OrderService is the boundary to the commerce/order backend. The scheduler
// calls it once per due contract; everything behind it (payment capture,
// fulfillment) is out of this core's hands.
type OrderService interface {
	CreateOrder(ctx context.Context, contract *contractdomain.Contract, lines []contractdomain.ContractLine) (Order, error)
}

type stubOrderService struct {
	genID *snowflake.Node
	log   *zap.Logger
}

// NewStubOrderService manufactures order ids and numbers locally. It stands in
// for the real commerce backend until one is wired up.
func NewStubOrderService(genID *snowflake.Node, log *zap.Logger) OrderService {
	return &stubOrderService{
		genID: genID,
		log:   log.Named("commerce.orders"),
	}
}

func (s *stubOrderService) CreateOrder(ctx context.Context, contract *contractdomain.Contract, lines []contractdomain.ContractLine) (Order, error) {
	order := Order{
		ID:          s.genID.Generate(),
		OrderNumber: "SO-" + strings.ToUpper(uuid.NewString()[:8]),
	}
	s.log.Info("stub order created",
		zap.Int64("contract_id", int64(contract.ID)),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(lines)),
	)
	return order, nil
}
