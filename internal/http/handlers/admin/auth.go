package admin

import (
	"errors"

	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/metrics"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	params, ok := h.params(c)
	if !ok {
		return
	}
	if !h.requireDatabase(c) {
		return
	}

	if err := h.CaptchaService.Verify(service.CaptchaVerifyPayload{
		CaptchaID:   params.String("captcha_id"),
		CaptchaCode: params.String("captcha_code"),
	}); err != nil {
		metrics.RecordLogin("failure")
		shared.RespondError(c, err)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), params.String("username"), rawString(params, "password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.RecordLogin("failure")
			shared.RequestLog(c).Infow("admin_login_failed", "username", params.String("username"), "client_ip", c.ClientIP())
		}
		shared.RespondError(c, err)
		return
	}
	metrics.RecordLogin("success")
	shared.RequestLog(c).Infow("admin_login", "admin_id", result.User.ID, "client_ip", c.ClientIP())
	response.SuccessWithMsg(c, "Login successful", result)
}

// Logout 令牌无状态，仅做确认
func (h *Handler) Logout(c *gin.Context) {
	response.SuccessWithMsg(c, "Logged out", nil)
}

// VerifyToken 返回令牌对应管理员的最新资料
func (h *Handler) VerifyToken(c *gin.Context) {
	if !h.requireDatabase(c) {
		return
	}
	identity, err := h.AuthService.CurrentAdmin(c.Request.Context(), shared.AdminIdentity(c))
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			shared.AbortWithError(c, response.KindUnauthorized, shared.MsgInvalidToken)
			return
		}
		shared.RespondError(c, err)
		return
	}
	response.Success(c, gin.H{"user": identity})
}

// Captcha 生成登录图片验证码
func (h *Handler) Captcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"enabled": h.CaptchaService.Enabled(),
		"captcha": challenge,
	})
}

// 口令不去除首尾空白
func rawString(params shared.Params, key string) string {
	if value := params.StringPtr(key); value != nil {
		return *value
	}
	return ""
}
