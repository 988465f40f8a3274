package shared

import (
	"errors"

	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 错误类别映射表，按顺序匹配
var errorKinds = []struct {
	err  error
	kind response.Kind
}{
	{ErrInvalidBody, response.KindBadRequest},
	{ErrInvalidAction, response.KindBadRequest},

	{service.ErrInvalidCredentials, response.KindUnauthorized},
	{service.ErrAdminNotFound, response.KindUnauthorized},
	{credential.ErrInvalidToken, response.KindUnauthorized},
	{credential.ErrTokenExpired, response.KindUnauthorized},
	{service.ErrCaptchaRequired, response.KindBadRequest},
	{service.ErrCaptchaInvalid, response.KindBadRequest},
	{service.ErrTooManyLoginAttempts, response.KindTooManyRequests},

	{service.ErrUserIDRequired, response.KindBadRequest},
	{service.ErrEmailRequired, response.KindBadRequest},
	{service.ErrInvalidEmail, response.KindBadRequest},
	{service.ErrInvalidStatus, response.KindBadRequest},
	{service.ErrNoFieldsToUpdate, response.KindBadRequest},
	{service.ErrEmailExists, response.KindConflict},
	{service.ErrUserNotFound, response.KindNotFound},

	{service.ErrPageIDRequired, response.KindBadRequest},
	{service.ErrPageFieldsRequired, response.KindBadRequest},
	{service.ErrPageOwnerNotFound, response.KindBadRequest},
	{service.ErrPageNotFound, response.KindNotFound},

	{service.ErrDatabaseParamsRequired, response.KindBadRequest},
	{service.ErrUnsupportedDriver, response.KindBadRequest},
	{service.ErrConnectionFailed, response.KindBadRequest},
	{service.ErrSettingKeyRequired, response.KindBadRequest},
	{service.ErrSettingNotFound, response.KindNotFound},
	{service.ErrReloadUnavailable, response.KindBadRequest},
}

// ErrInvalidAction 动作不在分组的动作表中
var ErrInvalidAction = errors.New("Invalid action")

// 令牌错误统一提示，不区分过期与伪造
const (
	MsgTokenRequired = "Token required"
	MsgInvalidToken  = "Invalid token"
	MsgForbidden     = "Forbidden"
	MsgServerError   = "Server error"
)

// KindOf 返回错误对应的类别，未登记的错误视为服务端错误
func KindOf(err error) (response.Kind, bool) {
	for _, entry := range errorKinds {
		if errors.Is(err, entry.err) {
			return entry.kind, true
		}
	}
	return response.KindInternal, false
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按错误类别输出响应；未登记的错误记录日志并按环境决定是否暴露详情
func RespondError(c *gin.Context, err error) {
	kind, known := KindOf(err)
	if known {
		message := err.Error()
		if errors.Is(err, credential.ErrInvalidToken) || errors.Is(err, credential.ErrTokenExpired) {
			message = MsgInvalidToken
		}
		response.Error(c, kind, message)
		return
	}
	RespondInternal(c, err)
}

// RespondInternal 输出 500 响应
func RespondInternal(c *gin.Context, err error) {
	appErr := response.WrapError(response.KindInternal, MsgServerError, err)
	RequestLog(c).Errorw("handler_error",
		"kind", appErr.Kind.String(),
		"message", appErr.Message,
		"error", err,
	)
	message := appErr.Message
	if err != nil && exposeDetail(c) {
		message = appErr.Message + ": " + err.Error()
	}
	response.Error(c, appErr.Kind, message)
}

// AbortWithError 中间件使用：输出错误并中止
func AbortWithError(c *gin.Context, kind response.Kind, message string) {
	response.Abort(c, kind, message)
}
