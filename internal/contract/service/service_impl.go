package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/contractflow/internal/authorization"
	"github.com/railzwaylabs/contractflow/internal/clock"
	"github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/interval"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	calc  *interval.Calculator
	authz authorization.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Calc  *interval.Calculator
	Authz authorization.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("contract.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		calc:  p.Calc,
		authz: p.Authz,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateContractRequest) (domain.CreateContractResponse, error) {
	now := interval.DateOnly(s.clock.Now(ctx))

	unit, err := validateCreate(req, now)
	if err != nil {
		return domain.CreateContractResponse{}, err
	}

	start := interval.DateOnly(req.StartDate)
	end := interval.DateOnly(req.EndDate)

	next := s.calc.NextBillingDate(start, end, req.IntervalValue, unit, req.DeliveryAnchor, now)
	if !next.Before(end) {
		return domain.CreateContractResponse{}, domain.ErrNextDateBeyondEnd
	}

	contract := domain.Contract{
		ID:                    s.genID.Generate(),
		StoreID:               req.Caller.StoreID,
		CustomerID:            req.CustomerID,
		CompanyID:             req.CompanyID,
		CompanyLocationID:     req.Caller.CompanyLocationID,
		Name:                  strings.TrimSpace(req.Name),
		Note:                  req.Note,
		PONumber:              req.PONumber,
		CurrencyCode:          strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
		Status:                domain.StatusPending,
		StartDate:             start,
		EndDate:               end,
		IntervalValue:         req.IntervalValue,
		IntervalUnit:          string(unit),
		DeliveryAnchor:        clampedAnchor(req.DeliveryAnchor, unit),
		NextOrderCreationDate: next,
		OrderTotal:            req.OrderTotal,
		ShippingMethodName:    req.ShippingMethodName,
		ShippingMethodID:      req.ShippingMethodID,
		ShippingCost:          req.ShippingCost,
		DiscountType:          req.DiscountType,
		DiscountValue:         req.DiscountValue,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if req.Metadata != nil {
		contract.Metadata = datatypes.JSONMap(req.Metadata)
	}

	lines := buildLines(s.genID, &contract, req.Lines, now)

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &contract); err != nil {
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	}); err != nil {
		s.log.Error("contract creation failed", zap.Error(err), zap.String("store_id", req.Caller.StoreID))
		return domain.CreateContractResponse{}, errors.Join(domain.ErrCreationFailed, err)
	}

	return domain.CreateContractResponse{ID: contract.ID, Status: contract.Status}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateContractRequest) (domain.UpdateContractResponse, error) {
	contract, err := s.loadOwned(ctx, s.db, req.Caller, req.ID)
	if err != nil {
		return domain.UpdateContractResponse{}, err
	}

	applyPatch(contract, req)

	unit, err := validateUpdate(contract)
	if err != nil {
		return domain.UpdateContractResponse{}, err
	}
	if req.Lines != nil {
		if err := validateLines(req.Lines); err != nil {
			return domain.UpdateContractResponse{}, err
		}
	}

	now := interval.DateOnly(s.clock.Now(ctx))
	next := s.calc.NextBillingDate(contract.StartDate, contract.EndDate, contract.IntervalValue, unit, contract.DeliveryAnchor, now)
	if !next.Before(contract.EndDate) {
		return domain.UpdateContractResponse{}, domain.ErrNextDateBeyondEnd
	}

	contract.IntervalUnit = string(unit)
	contract.DeliveryAnchor = clampedAnchor(contract.DeliveryAnchor, unit)
	contract.NextOrderCreationDate = next
	contract.UpdatedAt = now

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, contract); err != nil {
			return err
		}
		if req.Lines != nil {
			lines := buildLines(s.genID, contract, req.Lines, now)
			return s.repo.ReplaceLines(ctx, tx, contract.StoreID, contract.ID, lines)
		}
		return nil
	}); err != nil {
		s.log.Error("contract update failed", zap.Error(err), zap.Int64("contract_id", int64(contract.ID)))
		return domain.UpdateContractResponse{}, errors.Join(domain.ErrUpdateFailed, err)
	}

	return domain.UpdateContractResponse{
		ID:      contract.ID,
		Status:  contract.Status,
		Message: "contract updated",
	}, nil
}

func (s *Service) GetByID(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ContractWithLines, error) {
	contract, err := s.loadOwned(ctx, s.db, caller, id)
	if err != nil {
		return domain.ContractWithLines{}, err
	}

	lines, err := s.repo.ListLines(ctx, s.db, contract.StoreID, contract.ID)
	if err != nil {
		return domain.ContractWithLines{}, err
	}

	return domain.ContractWithLines{Contract: *contract, Lines: lines}, nil
}

func (s *Service) Approve(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	var resp domain.ActionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status == domain.StatusActive {
			resp = idempotentResponse(contract, "contract already active")
			return nil
		}
		if !domain.TransitionAllowed(contract.Status, domain.StatusActive) {
			return domain.ErrIllegalTransition
		}

		ok, err := s.authz.HasApprovalPermission(ctx, caller.StoreID, caller.CompanyLocationID, caller.ActorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnauthorized
		}

		now := interval.DateOnly(s.clock.Now(ctx))
		observed := contract.UpdatedAt

		contract.Status = domain.StatusActive
		contract.NextOrderCreationDate = s.calc.NextBillingDate(
			contract.StartDate, contract.EndDate,
			contract.IntervalValue, interval.Unit(contract.IntervalUnit),
			contract.DeliveryAnchor, now,
		)
		approverID := caller.ActorID
		contract.ApproverID = &approverID
		if name := strings.TrimSpace(caller.ActorName); name != "" {
			contract.ApproverName = &name
		}
		contract.UpdatedAt = s.clock.Now(ctx)

		if err := s.persistLifecycle(ctx, tx, contract, observed); err != nil {
			return err
		}
		resp = domain.ActionResponse{
			Success:               true,
			Message:               "contract approved",
			Status:                contract.Status,
			NextOrderCreationDate: contract.NextOrderCreationDate,
		}
		return nil
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return resp, nil
}

func (s *Service) Decline(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	var resp domain.ActionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status == domain.StatusDeclined {
			resp = idempotentResponse(contract, "contract already declined")
			return nil
		}
		if !domain.TransitionAllowed(contract.Status, domain.StatusDeclined) {
			return domain.ErrIllegalTransition
		}

		ok, err := s.authz.HasApprovalPermission(ctx, caller.StoreID, caller.CompanyLocationID, caller.ActorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnauthorized
		}

		observed := contract.UpdatedAt
		contract.Status = domain.StatusDeclined
		contract.UpdatedAt = s.clock.Now(ctx)

		if err := s.persistLifecycle(ctx, tx, contract, observed); err != nil {
			return err
		}
		resp = domain.ActionResponse{Success: true, Message: "contract declined", Status: contract.Status}
		return nil
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return resp, nil
}

func (s *Service) Pause(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	var resp domain.ActionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status == domain.StatusPaused {
			resp = idempotentResponse(contract, "contract already paused")
			return nil
		}
		if contract.Status != domain.StatusActive {
			return domain.ErrIllegalTransition
		}

		observed := contract.UpdatedAt
		contract.Status = domain.StatusPaused
		contract.UpdatedAt = s.clock.Now(ctx)

		if err := s.persistLifecycle(ctx, tx, contract, observed); err != nil {
			return err
		}
		resp = domain.ActionResponse{Success: true, Message: "contract paused", Status: contract.Status}
		return nil
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return resp, nil
}

func (s *Service) Resume(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	var resp domain.ActionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status == domain.StatusActive {
			resp = idempotentResponse(contract, "contract already active")
			return nil
		}
		if contract.Status != domain.StatusPaused {
			return domain.ErrIllegalTransition
		}

		now := interval.DateOnly(s.clock.Now(ctx))
		observed := contract.UpdatedAt
		rescheduled := false

		if !contract.NextOrderCreationDate.After(now) {
			contract.NextOrderCreationDate = s.calc.NextBillingDate(
				contract.StartDate, contract.EndDate,
				contract.IntervalValue, interval.Unit(contract.IntervalUnit),
				contract.DeliveryAnchor, now,
			)
			rescheduled = true
		}

		contract.Status = domain.StatusActive
		contract.UpdatedAt = s.clock.Now(ctx)

		if err := s.persistLifecycle(ctx, tx, contract, observed); err != nil {
			return err
		}
		resp = domain.ActionResponse{
			Success:               true,
			Message:               "contract resumed",
			Status:                contract.Status,
			Rescheduled:           rescheduled,
			NextOrderCreationDate: contract.NextOrderCreationDate,
		}
		return nil
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return resp, nil
}

func (s *Service) Skip(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	var resp domain.ActionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status != domain.StatusActive {
			return domain.ErrNotActive
		}

		now := interval.DateOnly(s.clock.Now(ctx))
		if now.After(contract.NextOrderCreationDate) {
			return domain.ErrSkipDatePassed
		}

		unit := interval.Unit(contract.IntervalUnit)
		next := s.calc.AddIntervalAnchored(contract.NextOrderCreationDate, contract.IntervalValue, unit, contract.DeliveryAnchor)
		if !next.Before(contract.EndDate) {
			return domain.ErrSkipBeyondEnd
		}

		observed := contract.UpdatedAt
		contract.NextOrderCreationDate = next
		contract.UpdatedAt = s.clock.Now(ctx)

		if err := s.persistLifecycle(ctx, tx, contract, observed); err != nil {
			return err
		}
		resp = domain.ActionResponse{
			Success:               true,
			Message:               "next order skipped",
			Status:                contract.Status,
			NextOrderCreationDate: contract.NextOrderCreationDate,
		}
		return nil
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, caller domain.CallerContext, id snowflake.ID) (domain.ActionResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.loadOwnedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		if contract.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		if err := s.repo.DeleteLines(ctx, tx, contract.StoreID, contract.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, contract.StoreID, contract.ID)
	})
	if err != nil {
		return domain.ActionResponse{}, err
	}
	return domain.ActionResponse{Success: true, Message: "contract deleted"}, nil
}

func (s *Service) loadOwned(ctx context.Context, db *gorm.DB, caller domain.CallerContext, id snowflake.ID) (*domain.Contract, error) {
	contract, err := s.repo.FindByID(ctx, db, caller.StoreID, id)
	if err != nil {
		return nil, err
	}
	return checkOwnership(contract, caller)
}

func (s *Service) loadOwnedForUpdate(ctx context.Context, db *gorm.DB, caller domain.CallerContext, id snowflake.ID) (*domain.Contract, error) {
	contract, err := s.repo.FindByIDForUpdate(ctx, db, caller.StoreID, id)
	if err != nil {
		return nil, err
	}
	return checkOwnership(contract, caller)
}

func checkOwnership(contract *domain.Contract, caller domain.CallerContext) (*domain.Contract, error) {
	if contract == nil {
		return nil, domain.ErrContractNotFound
	}
	if contract.CompanyLocationID != caller.CompanyLocationID {
		return nil, domain.ErrUnauthorized
	}
	return contract, nil
}

func (s *Service) persistLifecycle(ctx context.Context, tx *gorm.DB, contract *domain.Contract, observed time.Time) error {
	ok, err := s.repo.UpdateLifecycle(ctx, tx, contract, observed)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func idempotentResponse(contract *domain.Contract, message string) domain.ActionResponse {
	return domain.ActionResponse{
		Success:               true,
		Message:               message,
		Status:                contract.Status,
		NextOrderCreationDate: contract.NextOrderCreationDate,
	}
}

func buildLines(genID *snowflake.Node, contract *domain.Contract, inputs []domain.LineInput, now time.Time) []domain.ContractLine {
	lines := make([]domain.ContractLine, 0, len(inputs))
	for _, input := range inputs {
		lines = append(lines, domain.ContractLine{
			ID:                    genID.Generate(),
			ContractID:            contract.ID,
			StoreID:               contract.StoreID,
			VariantID:             input.VariantID,
			SKU:                   strings.TrimSpace(input.SKU),
			Quantity:              input.Quantity,
			UnitPrice:             input.UnitPrice,
			CustomerPartnerNumber: input.CustomerPartnerNumber,
			CreatedAt:             now,
		})
	}
	return lines
}

func clampedAnchor(anchor *int, unit interval.Unit) *int {
	if anchor == nil {
		return nil
	}
	clamped := interval.ClampAnchor(*anchor, unit)
	return &clamped
}
