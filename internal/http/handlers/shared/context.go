package shared

import (
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	adminIdentityKey = "admin_identity"
	errorDetailKey   = "expose_error_detail"
)

// SetAdminIdentity 保存认证后的管理员身份
func SetAdminIdentity(c *gin.Context, identity *service.AdminIdentity) {
	c.Set(adminIdentityKey, identity)
	c.Set("admin_id", identity.ID)
}

// AdminIdentity 读取当前管理员身份，未认证时返回 nil
func AdminIdentity(c *gin.Context) *service.AdminIdentity {
	value, ok := c.Get(adminIdentityKey)
	if !ok {
		return nil
	}
	identity, _ := value.(*service.AdminIdentity)
	return identity
}

// ExposeErrorDetail 开发环境下在 500 响应中附带错误详情
func ExposeErrorDetail(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(errorDetailKey, enabled)
		c.Next()
	}
}

func exposeDetail(c *gin.Context) bool {
	return c.GetBool(errorDetailKey)
}
