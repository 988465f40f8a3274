package admin

import (
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboardData 仪表盘聚合数据
func (h *Handler) GetDashboardData(c *gin.Context) {
	if !h.requireDatabase(c) {
		return
	}
	data, err := h.DashboardService.GetData(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.Success(c, data)
}
