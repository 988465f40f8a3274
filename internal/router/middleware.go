package router

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/textpages-admin/internal/authz"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/metrics"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// 动作分发器写入上下文，供日志与指标使用
const (
	groupContextKey  = "action_group"
	actionContextKey = "action"
)

// CORSMiddleware 跨域中间件，预检请求直接返回 200 空响应
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Authorization"}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"action", c.GetString(actionContextKey),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// MetricsMiddleware 记录请求数与耗时
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		c.Next()

		metrics.RecordAPIRequest(c.Request.Method, metricsEndpoint(c), c.Writer.Status(), time.Since(start))
	}
}

func metricsEndpoint(c *gin.Context) string {
	group := c.GetString(groupContextKey)
	action := c.GetString(actionContextKey)
	if group != "" && action != "" {
		return group + "." + action
	}
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}

// RecoveryMiddleware 捕获 panic 并输出统一信封
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		shared.RespondInternal(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// JWTAuthMiddleware 校验 Bearer 令牌，成功后把身份写入上下文
func JWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, authService) {
			return
		}
		c.Next()
	}
}

// authenticate 校验令牌；失败时已输出响应并中止
func authenticate(c *gin.Context, authService *service.AuthService) bool {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		shared.AbortWithError(c, response.KindUnauthorized, shared.MsgTokenRequired)
		return false
	}
	if authService == nil {
		shared.AbortWithError(c, response.KindUnauthorized, shared.MsgInvalidToken)
		return false
	}
	identity, err := authService.ParseToken(token)
	if err != nil {
		shared.RequestLog(c).Debugw("token_rejected", "error", err)
		shared.AbortWithError(c, response.KindUnauthorized, shared.MsgInvalidToken)
		return false
	}
	shared.SetAdminIdentity(c, identity)
	return true
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AdminRBACMiddleware 按角色判断是否允许对资源执行动作
func AdminRBACMiddleware(authzService *authz.Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, authzService, resource, action) {
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, authzService *authz.Service, resource, action string) bool {
	identity := shared.AdminIdentity(c)
	if identity == nil {
		shared.AbortWithError(c, response.KindUnauthorized, shared.MsgTokenRequired)
		return false
	}
	if authzService == nil {
		shared.RequestLog(c).Errorw("admin_rbac_service_unavailable")
		shared.AbortWithError(c, response.KindForbidden, shared.MsgForbidden)
		return false
	}

	allowed, err := authzService.Enforce(identity.Role, resource, action)
	if err != nil {
		shared.RequestLog(c).Errorw("admin_rbac_enforce_failed",
			"admin_id", identity.ID,
			"role", identity.Role,
			"resource", resource,
			"error", err,
		)
		shared.AbortWithError(c, response.KindForbidden, shared.MsgForbidden)
		return false
	}
	if !allowed {
		shared.RequestLog(c).Warnw("admin_rbac_permission_denied",
			"admin_id", identity.ID,
			"role", identity.Role,
			"resource", resource,
			"action", action,
		)
		shared.AbortWithError(c, response.KindForbidden, shared.MsgForbidden)
		return false
	}
	return true
}

// SetupGuardMiddleware 首次初始化完成前放行匿名请求，之后按令牌与角色校验
func SetupGuardMiddleware(pending func(ctx context.Context) bool, authService *service.AuthService, authzService *authz.Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pending(c.Request.Context()) {
			c.Next()
			return
		}
		if !authenticate(c, authService) || !authorize(c, authzService, resource, action) {
			return
		}
		c.Next()
	}
}
