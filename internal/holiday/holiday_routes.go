package holiday

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	holidays := r.Group("/holidays")
	{
		holidays.GET("", h.GetAll)
		holidays.POST("", h.Create)
		holidays.DELETE("/:id", h.Delete)
	}
}
