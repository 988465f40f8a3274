package admin

import (
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// userListResponse 用户列表，users 与 items 内容相同
type userListResponse struct {
	Items []models.User `json:"items"`
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// GetUsers 用户列表
func (h *Handler) GetUsers(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	list, err := h.UserService.List(c.Request.Context(), service.ListUsersInput{
		Page:   params.Int("page"),
		Limit:  params.Int("limit"),
		Search: params.String("search"),
		Status: params.String("status"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	items := list.Items
	if items == nil {
		items = []models.User{}
	}
	response.Success(c, userListResponse{
		Items: items,
		Users: items,
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
	})
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	user, err := h.UserService.Get(c.Request.Context(), params.ID("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.Success(c, user)
}

// CreateUser 创建用户
func (h *Handler) CreateUser(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	user, err := h.UserService.Create(c.Request.Context(), service.CreateUserInput{
		Email:  params.String("email"),
		Status: params.String("status"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "User created successfully", user)
}

// UpdateUser 部分更新用户，返回更新后的记录
func (h *Handler) UpdateUser(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	user, err := h.UserService.Update(c.Request.Context(), service.UpdateUserInput{
		ID:     params.ID("id"),
		Email:  params.String("email"),
		Status: params.String("status"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "User updated successfully", user)
}

// DeleteUser 删除用户，其页面随之删除
func (h *Handler) DeleteUser(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	if err := h.UserService.Delete(c.Request.Context(), params.ID("id")); err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "User deleted successfully", nil)
}
