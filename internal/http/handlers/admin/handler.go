package admin

import (
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 后台管理接口处理器入口
// 说明：动作接口与 REST 路由共用同一组处理函数。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// params 解析请求参数，失败时已输出响应
func (h *Handler) params(c *gin.Context) (shared.Params, bool) {
	params, err := shared.ParseParams(c)
	if err != nil {
		shared.RespondError(c, err)
		return nil, false
	}
	return params, true
}

// requireDatabase 业务数据库不可用时输出 500
func (h *Handler) requireDatabase(c *gin.Context) bool {
	if h.HasDatabase() {
		return true
	}
	shared.RespondInternal(c, provider.ErrDatabaseUnavailable)
	return false
}
