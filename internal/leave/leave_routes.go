package leave

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	leaves := r.Group("/leaves")
	{
		leaves.GET("", h.GetAll)
		leaves.POST("", h.Create)
		leaves.GET("/:id", h.GetByID)
		leaves.POST("/:id/process", h.Process)
		leaves.POST("/:id/approve", h.Approve)
		leaves.POST("/:id/reject", h.Reject)
	}
}
