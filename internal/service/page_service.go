package service

import (
	"context"
	"errors"
	"strings"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"

	"gorm.io/gorm"
)

// PageService 用户页面管理
type PageService struct {
	repo       repository.PageRepository
	userRepo   repository.UserRepository
	pagination config.PaginationConfig
}

// NewPageService 创建页面服务
func NewPageService(repo repository.PageRepository, userRepo repository.UserRepository, pagination config.PaginationConfig) *PageService {
	return &PageService{repo: repo, userRepo: userRepo, pagination: pagination}
}

// ListPagesInput 页面列表查询参数
type ListPagesInput struct {
	Page   int
	Limit  int
	Search string
	UserID uint
}

// PageList 页面列表结果
type PageList struct {
	Items []models.Page
	Total int64
	Page  int
	Limit int
}

// CreatePageInput 创建页面参数
type CreatePageInput struct {
	UserID  uint
	Title   string
	Content string
}

// UpdatePageInput 更新页面参数
// Title 为空时忽略；Content 非 nil 即写入（允许清空）
type UpdatePageInput struct {
	ID      uint
	Title   string
	Content *string
}

// List 分页查询页面，可按所属用户过滤
func (s *PageService) List(ctx context.Context, input ListPagesInput) (*PageList, error) {
	query := NormalizePageQuery(s.pagination, input.Page, input.Limit)
	pages, total, err := s.repo.List(ctx, repository.PageListFilter{
		Page:     query.Page,
		PageSize: query.Limit,
		Search:   strings.TrimSpace(input.Search),
		UserID:   input.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &PageList{Items: pages, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

// Get 获取页面详情（含所属用户邮箱）
func (s *PageService) Get(ctx context.Context, id uint) (*models.Page, error) {
	if id == 0 {
		return nil, ErrPageIDRequired
	}
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// Create 创建页面，写入前确认所属用户存在
func (s *PageService) Create(ctx context.Context, input CreatePageInput) (*models.Page, error) {
	title := strings.TrimSpace(input.Title)
	if input.UserID == 0 || title == "" {
		return nil, ErrPageFieldsRequired
	}

	exists, err := s.userRepo.Exists(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPageOwnerNotFound
	}

	page := &models.Page{
		UserID:  input.UserID,
		Title:   title,
		Content: input.Content,
	}
	if err := s.repo.Create(ctx, page); err != nil {
		// 校验与插入之间用户被删除
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrPageOwnerNotFound
		}
		return nil, err
	}
	return s.Get(ctx, page.ID)
}

// Update 部分更新页面
func (s *PageService) Update(ctx context.Context, input UpdatePageInput) (*models.Page, error) {
	if input.ID == 0 {
		return nil, ErrPageIDRequired
	}

	fields := repository.PageFields{Content: input.Content}
	if title := strings.TrimSpace(input.Title); title != "" {
		fields.Title = &title
	}
	if fields.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	found, err := s.repo.Update(ctx, input.ID, fields)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPageNotFound
	}
	return s.Get(ctx, input.ID)
}

// Delete 硬删除页面
func (s *PageService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrPageIDRequired
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPageNotFound
	}
	return nil
}
