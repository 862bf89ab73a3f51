package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
)

// callerFromHeaders builds the acting identity from the gateway-injected
// headers. The upstream gateway authenticates the caller; this service only
// trusts and scopes by what it forwards.
func callerFromHeaders(c *gin.Context) (contractdomain.CallerContext, *apiError) {
	storeID := strings.TrimSpace(c.GetHeader("X-Store-ID"))
	if storeID == "" {
		return contractdomain.CallerContext{}, newValidationError("X-Store-ID", "missing_store", "X-Store-ID header is required")
	}

	caller := contractdomain.CallerContext{
		StoreID:   storeID,
		ActorName: strings.TrimSpace(c.GetHeader("X-Actor-Name")),
	}

	if raw := strings.TrimSpace(c.GetHeader("X-Company-Location-ID")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return contractdomain.CallerContext{}, newValidationError("X-Company-Location-ID", "invalid_location", "invalid company location id")
		}
		caller.CompanyLocationID = id
	}

	if raw := strings.TrimSpace(c.GetHeader("X-Actor-ID")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return contractdomain.CallerContext{}, newValidationError("X-Actor-ID", "invalid_actor", "invalid actor id")
		}
		caller.ActorID = id
	}

	return caller, nil
}

func contractIDParam(c *gin.Context) (snowflake.ID, *apiError) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, newValidationError("id", "invalid_id", "invalid contract id")
	}
	return id, nil
}
