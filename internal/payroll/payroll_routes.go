package payroll

import (
	"go-payday/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	payrolls := r.Group("/payrolls")
	{
		payrolls.GET("", h.GetAll)
		payrolls.GET("/:employee_id", h.GetByEmployee)
		payrolls.POST("/run", middleware.Idempotency(rdb), h.Run)
	}

	// Reconciled per-day view, same classification the payroll run uses.
	r.GET("/attendances/:employee_id/timesheet", h.Timesheet)
}
