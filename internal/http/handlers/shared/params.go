package shared

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const paramsContextKey = "request_params"

// ErrInvalidBody 请求体不是 JSON 对象
var ErrInvalidBody = errors.New("Invalid JSON body")

// Params 查询参数与 JSON 请求体合并后的参数，同名时请求体优先
type Params map[string]interface{}

// ParseParams 解析并缓存请求参数，同一请求内重复调用返回同一份结果
func ParseParams(c *gin.Context) (Params, error) {
	if cached, ok := c.Get(paramsContextKey); ok {
		if params, ok := cached.(Params); ok {
			return params, nil
		}
	}

	params := Params{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	for _, key := range []string{"id", "key"} {
		if value := c.Param(key); value != "" {
			params[key] = value
		}
	}

	if c.Request.Body != nil && c.Request.Method != "GET" {
		body := map[string]interface{}{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
			return nil, ErrInvalidBody
		}
		for key, value := range body {
			params[key] = value
		}
	}

	c.Set(paramsContextKey, params)
	return params, nil
}

// Action 当前请求的动作名
func (p Params) Action() string {
	return p.String("action")
}

// Has 参数是否出现（值可以为空）
func (p Params) Has(key string) bool {
	value, ok := p[key]
	return ok && value != nil
}

// String 读取字符串参数，数字会被格式化
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// StringPtr 参数出现时返回其值（不去除空白），否则返回 nil
func (p Params) StringPtr(key string) *string {
	if !p.Has(key) {
		return nil
	}
	var value string
	switch v := p[key].(type) {
	case string:
		value = v
	default:
		value = p.String(key)
	}
	return &value
}

// Int 读取整数参数，无法解析时返回 0，超出 int32 的值截断到边界
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0
		}
		return clampInt32(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		if f != math.Trunc(f) {
			return 0
		}
		return clampInt32(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		return clampInt32(float64(n))
	default:
		return 0
	}
}

func clampInt32(v float64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}

// ID 读取正整数 ID，字符串形式的数字会被转换
func (p Params) ID(key string) uint {
	n := p.Int(key)
	if n <= 0 {
		return 0
	}
	return uint(n)
}
