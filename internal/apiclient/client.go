package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/service"
)

const defaultTimeout = 30 * time.Second

// Error 服务端返回的失败信封，或无法解析的非 2xx 响应
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsStatus 判断 err 是否为指定状态码的接口错误
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client 管理后台动作接口客户端，可并发使用
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken 预置访问令牌
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New 创建客户端，baseURL 形如 http://127.0.0.1:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token 当前令牌
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken 设置令牌，传空字符串表示匿名
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// envelope 响应信封，data 延迟解码
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// call 以 POST 方式调用 /api/<group>，成功时把 data 解码到 out
func (c *Client) call(ctx context.Context, group, action string, payload map[string]interface{}, out interface{}) (string, error) {
	body := map[string]interface{}{"action": action}
	for key, value := range payload {
		body[key] = value
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+group, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response failed: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &Error{Status: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return env.Message, nil
}

// Login 登录并保存令牌
func (c *Client) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	var result service.LoginResult
	if _, err := c.call(ctx, constants.GroupAuth, constants.ActionLogin, map[string]interface{}{
		"username": username,
		"password": password,
	}, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// VerifyToken 校验当前令牌并返回管理员资料
func (c *Client) VerifyToken(ctx context.Context) (*service.AdminIdentity, error) {
	var result struct {
		User service.AdminIdentity `json:"user"`
	}
	if _, err := c.call(ctx, constants.GroupAuth, constants.ActionVerifyToken, nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// ListQuery 列表查询条件，零值字段不发送
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
	UserID uint
}

func (q ListQuery) payload() map[string]interface{} {
	payload := map[string]interface{}{}
	if q.Page > 0 {
		payload["page"] = q.Page
	}
	if q.Limit > 0 {
		payload["limit"] = q.Limit
	}
	if q.Search != "" {
		payload["search"] = q.Search
	}
	if q.Status != "" {
		payload["status"] = q.Status
	}
	if q.UserID > 0 {
		payload["user_id"] = q.UserID
	}
	return payload
}

// UserList 用户分页结果
type UserList struct {
	Items []models.User `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListUsers 用户列表
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (*UserList, error) {
	var list UserList
	if _, err := c.call(ctx, constants.GroupUsers, constants.ActionGetUsers, q.payload(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUser 用户详情
func (c *Client) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if _, err := c.call(ctx, constants.GroupUsers, constants.ActionGetUser, map[string]interface{}{"id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser 创建用户，status 为空时由服务端取默认值
func (c *Client) CreateUser(ctx context.Context, email, status string) (*models.User, error) {
	payload := map[string]interface{}{"email": email}
	if status != "" {
		payload["status"] = status
	}
	var user models.User
	if _, err := c.call(ctx, constants.GroupUsers, constants.ActionCreateUser, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 部分更新用户，空字符串字段不发送
func (c *Client) UpdateUser(ctx context.Context, id uint, email, status string) (*models.User, error) {
	payload := map[string]interface{}{"id": id}
	if email != "" {
		payload["email"] = email
	}
	if status != "" {
		payload["status"] = status
	}
	var user models.User
	if _, err := c.call(ctx, constants.GroupUsers, constants.ActionUpdateUser, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser 删除用户及其页面
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	_, err := c.call(ctx, constants.GroupUsers, constants.ActionDeleteUser, map[string]interface{}{"id": id}, nil)
	return err
}

// PageList 页面分页结果
type PageList struct {
	Items []models.Page `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListPages 页面列表
func (c *Client) ListPages(ctx context.Context, q ListQuery) (*PageList, error) {
	var list PageList
	if _, err := c.call(ctx, constants.GroupPages, constants.ActionGetPages, q.payload(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetPage 页面详情
func (c *Client) GetPage(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if _, err := c.call(ctx, constants.GroupPages, constants.ActionGetPage, map[string]interface{}{"id": id}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage 为指定用户创建页面
func (c *Client) CreatePage(ctx context.Context, userID uint, title, content string) (*models.Page, error) {
	var page models.Page
	if _, err := c.call(ctx, constants.GroupPages, constants.ActionCreatePage, map[string]interface{}{
		"user_id": userID,
		"title":   title,
		"content": content,
	}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage title 为空不修改，content 为 nil 不修改
func (c *Client) UpdatePage(ctx context.Context, id uint, title string, content *string) (*models.Page, error) {
	payload := map[string]interface{}{"id": id}
	if title != "" {
		payload["title"] = title
	}
	if content != nil {
		payload["content"] = *content
	}
	var page models.Page
	if _, err := c.call(ctx, constants.GroupPages, constants.ActionUpdatePage, payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeletePage 删除页面
func (c *Client) DeletePage(ctx context.Context, id uint) error {
	_, err := c.call(ctx, constants.GroupPages, constants.ActionDeletePage, map[string]interface{}{"id": id}, nil)
	return err
}

// Dashboard 仪表盘数据
func (c *Client) Dashboard(ctx context.Context) (*service.DashboardData, error) {
	var data service.DashboardData
	if _, err := c.call(ctx, constants.GroupDashboard, constants.ActionGetDashboardData, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func databasePayload(input service.DatabaseInput) map[string]interface{} {
	cfg := map[string]interface{}{
		"driver":   input.Driver,
		"host":     input.Host,
		"database": input.Database,
		"username": input.Username,
		"password": input.Password,
	}
	if input.Port > 0 {
		cfg["port"] = input.Port
	}
	if input.Charset != "" {
		cfg["charset"] = input.Charset
	}
	if input.DSN != "" {
		cfg["dsn"] = input.DSN
	}
	return map[string]interface{}{"config": cfg}
}

// TestConnection 测试候选数据库连接
func (c *Client) TestConnection(ctx context.Context, input service.DatabaseInput) (*service.ConnectionReport, error) {
	var report service.ConnectionReport
	if _, err := c.call(ctx, constants.GroupSettings, constants.ActionTestDBConnection, databasePayload(input), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateTables 建表并写入默认数据，返回服务端提示与本次创建的对象
func (c *Client) CreateTables(ctx context.Context, input service.DatabaseInput) (string, *service.ProvisionReport, error) {
	var report service.ProvisionReport
	msg, err := c.call(ctx, constants.GroupSettings, constants.ActionCreateTables, databasePayload(input), &report)
	if err != nil {
		return "", nil, err
	}
	return msg, &report, nil
}

// SaveConfig 保存数据库配置，生效需要重载
func (c *Client) SaveConfig(ctx context.Context, input service.DatabaseInput) (*service.SaveConfigReport, error) {
	var report service.SaveConfigReport
	if _, err := c.call(ctx, constants.GroupSettings, constants.ActionSaveDBConfig, databasePayload(input), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
