package service

import (
	"strings"
	"time"

	"github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/interval"
)

func validateCreate(req domain.CreateContractRequest, today time.Time) (interval.Unit, error) {
	if strings.TrimSpace(req.Caller.StoreID) == "" {
		return "", domain.ErrInvalidStore
	}
	if req.CustomerID == 0 {
		return "", domain.ErrInvalidCustomer
	}
	if strings.TrimSpace(req.Name) == "" {
		return "", domain.ErrInvalidName
	}
	if strings.TrimSpace(req.CurrencyCode) == "" {
		return "", domain.ErrInvalidCurrency
	}
	if interval.DateOnly(req.StartDate).Before(today) {
		return "", domain.ErrInvalidStartDate
	}
	unit, err := validateCadence(req.StartDate, req.EndDate, req.IntervalValue, req.IntervalUnit)
	if err != nil {
		return "", err
	}
	if err := validateLines(req.Lines); err != nil {
		return "", err
	}
	return unit, nil
}

// validateUpdate re-checks the merged contract. Unlike creation, an existing
// contract may have a start date in the past.
func validateUpdate(contract *domain.Contract) (interval.Unit, error) {
	if strings.TrimSpace(contract.Name) == "" {
		return "", domain.ErrInvalidName
	}
	if strings.TrimSpace(contract.CurrencyCode) == "" {
		return "", domain.ErrInvalidCurrency
	}
	return validateCadence(contract.StartDate, contract.EndDate, contract.IntervalValue, contract.IntervalUnit)
}

func validateCadence(start, end time.Time, intervalValue int, intervalUnit string) (interval.Unit, error) {
	if !interval.DateOnly(end).After(interval.DateOnly(start)) {
		return "", domain.ErrInvalidDateOrder
	}
	if intervalValue <= 0 {
		return "", domain.ErrInvalidIntervalValue
	}
	unit, err := interval.ParseUnit(intervalUnit)
	if err != nil {
		return "", domain.ErrInvalidIntervalUnit
	}
	return unit, nil
}

func validateLines(lines []domain.LineInput) error {
	if len(lines) == 0 {
		return domain.ErrInvalidLines
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

func applyPatch(contract *domain.Contract, req domain.UpdateContractRequest) {
	if req.Name != nil {
		contract.Name = strings.TrimSpace(*req.Name)
	}
	if req.Note != nil {
		contract.Note = req.Note
	}
	if req.PONumber != nil {
		contract.PONumber = req.PONumber
	}
	if req.CurrencyCode != nil {
		contract.CurrencyCode = strings.ToUpper(strings.TrimSpace(*req.CurrencyCode))
	}
	if req.StartDate != nil {
		contract.StartDate = interval.DateOnly(*req.StartDate)
	}
	if req.EndDate != nil {
		contract.EndDate = interval.DateOnly(*req.EndDate)
	}
	if req.IntervalValue != nil {
		contract.IntervalValue = *req.IntervalValue
	}
	if req.IntervalUnit != nil {
		contract.IntervalUnit = *req.IntervalUnit
	}
	if req.DeliveryAnchor != nil {
		contract.DeliveryAnchor = req.DeliveryAnchor
	}
	if req.OrderTotal != nil {
		contract.OrderTotal = *req.OrderTotal
	}
	if req.ShippingMethodName != nil {
		contract.ShippingMethodName = *req.ShippingMethodName
	}
	if req.ShippingMethodID != nil {
		contract.ShippingMethodID = req.ShippingMethodID
	}
	if req.ShippingCost != nil {
		contract.ShippingCost = *req.ShippingCost
	}
	if req.DiscountType != nil {
		contract.DiscountType = req.DiscountType
	}
	if req.DiscountValue != nil {
		contract.DiscountValue = req.DiscountValue
	}
}
