package admin

import (
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/http/response"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/service"

	"github.com/gin-gonic/gin"
)

// pageListResponse 页面列表，pages 与 items 内容相同
type pageListResponse struct {
	Items []models.Page `json:"items"`
	Pages []models.Page `json:"pages"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// GetPages 页面列表
func (h *Handler) GetPages(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	list, err := h.PageService.List(c.Request.Context(), service.ListPagesInput{
		Page:   params.Int("page"),
		Limit:  params.Int("limit"),
		Search: params.String("search"),
		UserID: params.ID("user_id"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	items := list.Items
	if items == nil {
		items = []models.Page{}
	}
	response.Success(c, pageListResponse{
		Items: items,
		Pages: items,
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
	})
}

// GetPage 页面详情
func (h *Handler) GetPage(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	page, err := h.PageService.Get(c.Request.Context(), params.ID("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.Success(c, page)
}

// CreatePage 创建页面
func (h *Handler) CreatePage(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	page, err := h.PageService.Create(c.Request.Context(), service.CreatePageInput{
		UserID:  params.ID("user_id"),
		Title:   params.String("title"),
		Content: rawString(params, "content"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Page created successfully", page)
}

// UpdatePage content 出现即写入（允许为空），title 非空才写入
func (h *Handler) UpdatePage(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	page, err := h.PageService.Update(c.Request.Context(), service.UpdatePageInput{
		ID:      params.ID("id"),
		Title:   params.String("title"),
		Content: params.StringPtr("content"),
	})
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Page updated successfully", page)
}

// DeletePage 删除页面
func (h *Handler) DeletePage(c *gin.Context) {
	params, ok := h.params(c)
	if !ok || !h.requireDatabase(c) {
		return
	}
	if err := h.PageService.Delete(c.Request.Context(), params.ID("id")); err != nil {
		shared.RespondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Page deleted successfully", nil)
}
