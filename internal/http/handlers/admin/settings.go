package admin

import (
	"fmt"
	"strings"

	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// databaseInput 连接参数可以放在 config 对象里，也可以平铺在请求体中
func databaseInput(params shared.Params) service.DatabaseInput {
	source := params
	if nested, ok := params["config"].(map[string]interface{}); ok {
		source = shared.Params(nested)
	}
	database := source.String("database")
	if database == "" {
		database = source.String("name")
	}
	return service.DatabaseInput{
		Driver:   source.String("driver"),
		Host:     source.String("host"),
		Port:     source.Int("port"),
		Database: database,
		Username: source.String("username"),
		Password: rawString(source, "password"),
		Charset:  source.String("charset"),
		DSN:      source.String("dsn"),
	}
}

// TestDBConnection 测试候选连接参数，不落任何数据
func (h *Handler) TestDBConnection(c *gin.Context) {
	params, ok := h.params(c)
	if !ok {
		return
	}
	report, err := h.ProvisioningService.TestConnection(c.Request.Context(), databaseInput(params))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Database connection established successfully", report)
}

// CreateTables 幂等建表并写入默认管理员与设置
func (h *Handler) CreateTables(c *gin.Context) {
	params, ok := h.params(c)
	if !ok {
		return
	}
	report, err := h.ProvisioningService.CreateTables(c.Request.Context(), databaseInput(params))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	msg := "All tables already exist"
	if len(report.Created) > 0 {
		msg = fmt.Sprintf("Tables created successfully: %s", strings.Join(report.Created, ", "))
	}
	response.SuccessWithMsg(c, msg, report)
}

// SaveDBConfig 校验连接后写入配置文件
func (h *Handler) SaveDBConfig(c *gin.Context) {
	params, ok := h.params(c)
	if !ok {
		return
	}
	report, err := h.ProvisioningService.SaveConfig(c.Request.Context(), databaseInput(params))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Database settings saved successfully, reload required", report)
}

// GetSystemSettings 全部系统设置
func (h *Handler) GetSystemSettings(c *gin.Context) {
	if !h.requireDatabase(c) {
		return
	}
	settings, err := h.SettingService.List(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.Success(c, gin.H{"settings": settings})
}

// UpdateSystemSetting 写入单个设置项
func (h *Handler) UpdateSystemSetting(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	setting, err := h.SettingService.Update(c.Request.Context(), params.String("key"), rawString(params, "value"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Setting updated successfully", setting)
}

// ReloadConfig 请求重新读取配置文件并重建服务
func (h *Handler) ReloadConfig(c *gin.Context) {
	if err := h.ProvisioningService.RequestReload(); err != nil {
		shared.RespondError(c, err)
		return
	}
	shared.RequestLog(c).Infow("config_reload_requested")
	response.SuccessWithMsg(c, "Configuration reload scheduled", nil)
}
