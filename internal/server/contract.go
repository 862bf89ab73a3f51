package server

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
)

type contractLineRequest struct {
	VariantID             string  `json:"variant_id"`
	SKU                   string  `json:"sku"`
	Quantity              int     `json:"quantity"`
	UnitPrice             float64 `json:"unit_price"`
	CustomerPartnerNumber *string `json:"customer_partner_number,omitempty"`
}

type createContractRequest struct {
	CustomerID     string  `json:"customer_id"`
	CompanyID      string  `json:"company_id"`
	Name           string  `json:"name"`
	Note           *string `json:"note,omitempty"`
	PONumber       *string `json:"po_number,omitempty"`
	CurrencyCode   string  `json:"currency_code"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	IntervalValue  int     `json:"interval_value"`
	IntervalUnit   string  `json:"interval_unit"`
	DeliveryAnchor *int    `json:"delivery_anchor,omitempty"`

	OrderTotal         float64  `json:"order_total"`
	ShippingMethodName string   `json:"shipping_method_name,omitempty"`
	ShippingMethodID   *string  `json:"shipping_method_id,omitempty"`
	ShippingCost       float64  `json:"shipping_cost,omitempty"`
	DiscountType       *string  `json:"discount_type,omitempty"`
	DiscountValue      *float64 `json:"discount_value,omitempty"`

	Metadata map[string]any        `json:"metadata,omitempty"`
	Lines    []contractLineRequest `json:"lines"`
}

// @Summary      Create Contract
// @Description  Create a recurring subscription contract awaiting approval
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts [post]
func (s *Server) CreateContract(c *gin.Context) {
	caller, apiErr := callerFromHeaders(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer id"))
		return
	}
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil {
		AbortWithError(c, newValidationError("company_id", "invalid_company_id", "invalid company id"))
		return
	}
	startDate, apiErr := parseDate("start_date", req.StartDate)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	endDate, apiErr := parseDate("end_date", req.EndDate)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	lines, apiErr := parseLines(req.Lines)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	resp, err := s.contractSvc.Create(c.Request.Context(), contractdomain.CreateContractRequest{
		Caller:             caller,
		CustomerID:         customerID,
		CompanyID:          companyID,
		Name:               strings.TrimSpace(req.Name),
		Note:               req.Note,
		PONumber:           req.PONumber,
		CurrencyCode:       strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
		StartDate:          startDate,
		EndDate:            endDate,
		IntervalValue:      req.IntervalValue,
		IntervalUnit:       req.IntervalUnit,
		DeliveryAnchor:     req.DeliveryAnchor,
		OrderTotal:         req.OrderTotal,
		ShippingMethodName: req.ShippingMethodName,
		ShippingMethodID:   req.ShippingMethodID,
		ShippingCost:       req.ShippingCost,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
		Metadata:           req.Metadata,
		Lines:              lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

type updateContractRequest struct {
	Name           *string `json:"name,omitempty"`
	Note           *string `json:"note,omitempty"`
	PONumber       *string `json:"po_number,omitempty"`
	CurrencyCode   *string `json:"currency_code,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	IntervalValue  *int    `json:"interval_value,omitempty"`
	IntervalUnit   *string `json:"interval_unit,omitempty"`
	DeliveryAnchor *int    `json:"delivery_anchor,omitempty"`

	OrderTotal         *float64 `json:"order_total,omitempty"`
	ShippingMethodName *string  `json:"shipping_method_name,omitempty"`
	ShippingMethodID   *string  `json:"shipping_method_id,omitempty"`
	ShippingCost       *float64 `json:"shipping_cost,omitempty"`
	DiscountType       *string  `json:"discount_type,omitempty"`
	DiscountValue      *float64 `json:"discount_value,omitempty"`

	Lines []contractLineRequest `json:"lines,omitempty"`
}

// @Summary      Update Contract
// @Description  Patch contract fields; omitted fields keep their stored value
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id} [put]
func (s *Server) UpdateContract(c *gin.Context) {
	caller, apiErr := callerFromHeaders(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	id, apiErr := contractIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch := contractdomain.UpdateContractRequest{
		Caller:             caller,
		ID:                 id,
		Name:               req.Name,
		Note:               req.Note,
		PONumber:           req.PONumber,
		CurrencyCode:       req.CurrencyCode,
		IntervalValue:      req.IntervalValue,
		IntervalUnit:       req.IntervalUnit,
		DeliveryAnchor:     req.DeliveryAnchor,
		OrderTotal:         req.OrderTotal,
		ShippingMethodName: req.ShippingMethodName,
		ShippingMethodID:   req.ShippingMethodID,
		ShippingCost:       req.ShippingCost,
		DiscountType:       req.DiscountType,
		DiscountValue:      req.DiscountValue,
	}

	if req.StartDate != nil {
		start, apiErr := parseDate("start_date", *req.StartDate)
		if apiErr != nil {
			AbortWithError(c, apiErr)
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, apiErr := parseDate("end_date", *req.EndDate)
		if apiErr != nil {
			AbortWithError(c, apiErr)
			return
		}
		patch.EndDate = &end
	}
	if req.Lines != nil {
		lines, apiErr := parseLines(req.Lines)
		if apiErr != nil {
			AbortWithError(c, apiErr)
			return
		}
		patch.Lines = lines
	}

	resp, err := s.contractSvc.Update(c.Request.Context(), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

// @Summary      Get Contract
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id} [get]
func (s *Server) GetContract(c *gin.Context) {
	caller, apiErr := callerFromHeaders(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	id, apiErr := contractIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	resp, err := s.contractSvc.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Delete Contract
// @Description  Remove a contract; only permitted while pending
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id} [delete]
func (s *Server) DeleteContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Delete)
}

// @Summary      Approve Contract
// @Description  Activate a pending contract; requires approval permission
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id}/approve [post]
func (s *Server) ApproveContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Approve)
}

// @Summary      Decline Contract
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id}/decline [post]
func (s *Server) DeclineContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Decline)
}

// @Summary      Pause Contract
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id}/pause [post]
func (s *Server) PauseContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Pause)
}

// @Summary      Resume Contract
// @Description  Reactivate a paused contract, rescheduling a stale order date
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id}/resume [post]
func (s *Server) ResumeContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Resume)
}

// @Summary      Skip Next Order
// @Description  Advance the next order date by one interval without billing
// @Tags         contracts
// @Produce      json
// @Param        id  path  string  true  "Contract ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/contracts/{id}/skip [post]
func (s *Server) SkipContract(c *gin.Context) {
	s.lifecycleAction(c, s.contractSvc.Skip)
}

type lifecycleFunc func(ctx context.Context, caller contractdomain.CallerContext, id snowflake.ID) (contractdomain.ActionResponse, error)

func (s *Server) lifecycleAction(c *gin.Context, fn lifecycleFunc) {
	caller, apiErr := callerFromHeaders(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	id, apiErr := contractIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	resp, err := fn(c.Request.Context(), caller, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func parseDate(field, value string) (time.Time, *apiError) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, newValidationError(field, "invalid_date", field+" must be YYYY-MM-DD")
	}
	return t, nil
}

func parseLines(reqLines []contractLineRequest) ([]contractdomain.LineInput, *apiError) {
	lines := make([]contractdomain.LineInput, 0, len(reqLines))
	for _, l := range reqLines {
		variantID, err := snowflake.ParseString(strings.TrimSpace(l.VariantID))
		if err != nil {
			return nil, newValidationError("lines.variant_id", "invalid_variant_id", "invalid variant id")
		}
		lines = append(lines, contractdomain.LineInput{
			VariantID:             variantID,
			SKU:                   strings.TrimSpace(l.SKU),
			Quantity:              l.Quantity,
			UnitPrice:             l.UnitPrice,
			CustomerPartnerNumber: l.CustomerPartnerNumber,
		})
	}
	return lines, nil
}
