package router

import (
	"strconv"
	"strings"

	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/redisclient"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// 限流器不可用时的提示
const msgRateLimitUnavailable = "Rate limiter unavailable"

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// BlockSeconds 超限后把计数键的过期时间延长到该值，0 表示只等窗口结束
	BlockSeconds int
	Message      string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 and current == tonumber(ARGV[2]) + 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件，client 为 nil 时直接放行
func RateLimitMiddleware(client *redisclient.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		key = client.Key(rule.Prefix, key)

		result, err := rateLimitScript.Run(c.Request.Context(), client.Client, []string{key},
			rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
		if err != nil {
			shared.RequestLog(c).Warnw("rate_limit_unavailable", "key", key, "error", err)
			response.Abort(c, response.KindInternal, msgRateLimitUnavailable)
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			response.Abort(c, response.KindInternal, msgRateLimitUnavailable)
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			response.Abort(c, response.KindInternal, msgRateLimitUnavailable)
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			msg := strings.TrimSpace(rule.Message)
			if msg == "" {
				msg = service.ErrTooManyLoginAttempts.Error()
			}
			c.Header("Retry-After", strconv.Itoa(waitSeconds))
			response.Abort(c, response.KindTooManyRequests, msg)
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 使用请求参数 + IP 作为限流 key，参数缺失时退化为 IP
func KeyByIPAndParam(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		params, err := shared.ParseParams(c)
		if err != nil {
			return KeyByIP(c)
		}
		value := strings.ToLower(params.String(field))
		if value == "" {
			return KeyByIP(c)
		}
		return value + "|" + KeyByIP(c)
	}
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
