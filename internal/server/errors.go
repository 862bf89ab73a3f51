package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/scheduler"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// badRequestErrors map to 400: invalid input or an operation the contract's
// current state does not permit.
var badRequestErrors = []error{
	contractdomain.ErrInvalidStore,
	contractdomain.ErrInvalidCustomer,
	contractdomain.ErrInvalidName,
	contractdomain.ErrInvalidCurrency,
	contractdomain.ErrInvalidStartDate,
	contractdomain.ErrInvalidDateOrder,
	contractdomain.ErrInvalidIntervalValue,
	contractdomain.ErrInvalidIntervalUnit,
	contractdomain.ErrInvalidLines,
	contractdomain.ErrInvalidQuantity,
	contractdomain.ErrNextDateBeyondEnd,
	contractdomain.ErrSkipBeyondEnd,
	contractdomain.ErrIllegalTransition,
	contractdomain.ErrNotPending,
	contractdomain.ErrNotActive,
	contractdomain.ErrSkipDatePassed,
}

// AbortWithError translates a service error into the HTTP response. Unknown
// errors become opaque 500s; the detail goes to the log, not the client.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, contractdomain.ErrContractNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, contractdomain.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, contractdomain.ErrConcurrentUpdate):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, scheduler.ErrRunInProgress):
		status = http.StatusConflict
		message = err.Error()
	default:
		for _, known := range badRequestErrors {
			if errors.Is(err, known) {
				status = http.StatusBadRequest
				message = known.Error()
				break
			}
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": message}})
}
