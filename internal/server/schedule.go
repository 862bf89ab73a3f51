package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/contractflow/internal/scheduler"
)

// scheduleRunResponse wraps a scheduling pass result for API consumers, who
// key off the success flag and read counts under summary.
type scheduleRunResponse struct {
	Success bool              `json:"success"`
	Summary scheduler.Summary `json:"summary"`
}

// @Summary      Trigger Scheduling Pass
// @Description  Run discovery and validation synchronously; order creation continues in the background
// @Tags         schedule
// @Produce      json
// @Param        store_id  path  string  true  "Store ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/stores/{store_id}/schedule [post]
func (s *Server) TriggerSchedule(c *gin.Context) {
	storeID := strings.TrimSpace(c.Param("store_id"))

	summary, err := s.sched.Run(c.Request.Context(), storeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, scheduleRunResponse{Success: true, Summary: summary})
}

// @Summary      List Schedule Log
// @Description  Most recent scheduler decisions for a store, optionally filtered by contract
// @Tags         schedule
// @Produce      json
// @Param        store_id     path   string  true   "Store ID"
// @Param        contract_id  query  string  false  "Contract ID"
// @Param        limit        query  int     false  "Max entries, default 100"
// @Success      200  {object}  ListResponse
// @Router       /v1/stores/{store_id}/schedule-log [get]
func (s *Server) ListScheduleLog(c *gin.Context) {
	storeID := strings.TrimSpace(c.Param("store_id"))
	if storeID == "" {
		AbortWithError(c, newValidationError("store_id", "missing_store", "store id is required"))
		return
	}

	var contractID *snowflake.ID
	if raw := strings.TrimSpace(c.Query("contract_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("contract_id", "invalid_id", "invalid contract id"))
			return
		}
		contractID = &id
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = n
	}

	entries, err := s.scheduleSvc.ListLogs(c.Request.Context(), s.db, storeID, contractID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, entries)
}
