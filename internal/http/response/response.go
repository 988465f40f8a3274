package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope 统一响应结构，失败时只填 error
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMsg 成功响应（带提示消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Message: msg,
	})
}

// Error 错误响应，状态码由错误类别决定
func Error(c *gin.Context, kind Kind, msg string) {
	c.JSON(kind.Status(), Envelope{
		Success: false,
		Error:   msg,
	})
}

// Abort 错误响应并中止后续中间件
func Abort(c *gin.Context, kind Kind, msg string) {
	c.AbortWithStatusJSON(kind.Status(), Envelope{
		Success: false,
		Error:   msg,
	})
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, KindNotFound, msg)
}
