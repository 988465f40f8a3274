package repository

import (
	"context"
	"errors"

	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

// PageRepository 页面数据访问接口
type PageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Page, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, id uint, fields PageFields) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter PageListFilter) ([]models.Page, int64, error)
}

// GormPageRepository GORM 实现
type GormPageRepository struct {
	db *gorm.DB
}

// NewPageRepository 创建页面仓库
func NewPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// withOwner 附带所属用户邮箱
func withOwner(query *gorm.DB) *gorm.DB {
	return query.
		Select("user_pages.*, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = user_pages.user_id")
}

// GetByID 根据 ID 获取页面
func (r *GormPageRepository) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	query := withOwner(r.db.WithContext(ctx).Model(&models.Page{}))
	if err := query.Where("user_pages.id = ?", id).Take(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// Create 创建页面
func (r *GormPageRepository) Create(ctx context.Context, page *models.Page) error {
	return r.db.WithContext(ctx).Omit("User").Create(page).Error
}

// Update 只更新请求中出现的字段，返回记录是否存在
func (r *GormPageRepository) Update(ctx context.Context, id uint, fields PageFields) (bool, error) {
	updates := map[string]interface{}{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.Content != nil {
		updates["content"] = *fields.Content
	}
	if len(updates) == 0 {
		return false, nil
	}

	// updated_at 由 gorm 自动刷新
	result := r.db.WithContext(ctx).Model(&models.Page{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Page{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete 硬删除页面
func (r *GormPageRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Page{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 页面列表，按更新时间倒序
func (r *GormPageRepository) List(ctx context.Context, filter PageListFilter) ([]models.Page, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Page{})
		if filter.Search != "" {
			condition, count := buildLikeCondition(r.db, "user_pages.title", "user_pages.content")
			query = query.Where(condition, repeatLikeArgs(escapeLike(filter.Search), count)...)
		}
		if filter.UserID > 0 {
			query = query.Where("user_pages.user_id = ?", filter.UserID)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyPagination(withOwner(base()), filter.Page, filter.PageSize)

	pages := make([]models.Page, 0)
	if err := query.Order("user_pages.updated_at DESC").Order("user_pages.id DESC").Find(&pages).Error; err != nil {
		return nil, 0, err
	}
	return pages, total, nil
}
