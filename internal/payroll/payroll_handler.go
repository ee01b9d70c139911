package payroll

import (
	"encoding/json"
	"net/http"
	"time"

	"go-payday/internal/shared/apperror"
	"go-payday/internal/shared/clock"
	"go-payday/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyResultTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
	clk     clock.Clock
}

func NewHandler(service Service, rdb *redis.Client, clk clock.Clock) *Handler {
	return &Handler{service: service, rdb: rdb, clk: clk}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	resp, err := h.service.GetByEmployee(c.Request.Context(), c.Param("employee_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Run is the manual payroll trigger. It funnels into the same
// idempotency-guarded entry point the scheduler uses.
func (h *Handler) Run(c *gin.Context) {
	report, err := h.service.Run(c.Request.Context(), h.clk.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResult(c, report)
	response.Success(c, http.StatusOK, report, nil)
}

func (h *Handler) Timesheet(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid start date, expected YYYY-MM-DD", nil)
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid end date, expected YYYY-MM-DD", nil)
		return
	}

	resp, err := h.service.Timesheet(c.Request.Context(), c.Param("employee_id"), start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) cacheIdempotentResult(c *gin.Context, report RunReport) {
	if h.rdb == nil {
		return
	}
	cacheKey, ok := c.Get("idempotency_cache_key")
	if !ok {
		return
	}
	if payload, err := json.Marshal(report); err == nil {
		h.rdb.Set(c.Request.Context(), cacheKey.(string), payload, idempotencyResultTTL)
	}
	// The in-flight lock is no longer needed once the result is cached;
	// releasing it early beats waiting out the TTL.
	if lockKey, ok := c.Get("idempotency_lock_key"); ok {
		h.rdb.Del(c.Request.Context(), lockKey.(string))
	}
}
