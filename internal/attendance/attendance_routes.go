package attendance

import (
	"go-payday/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.RateLimitByIP(rate.Limit(5), 10))
	{
		attendances.POST("/time-in", h.TimeIn)
		attendances.POST("/time-out", h.TimeOut)
		attendances.GET("/:employee_id", h.GetRange)
	}
}
