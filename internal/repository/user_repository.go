package repository

import (
	"context"
	"errors"
	"time"

	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

// pagesCountColumn 用户页面数投影
const pagesCountColumn = "(SELECT COUNT(*) FROM user_pages WHERE user_pages.user_id = users.id) AS pages_count"

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields UserFields) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter UserListFilter) ([]models.User, int64, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) withStats(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Select("users.*, " + pagesCountColumn)
}

// GetByID 根据 ID 获取用户（含页面数）
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.withStats(ctx).Where("users.id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// EmailTaken 邮箱是否已被其他用户占用
func (r *GormUserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Exists 用户是否存在
func (r *GormUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.LastActive.IsZero() {
		user.LastActive = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// Update 只更新请求中出现的字段，返回记录是否存在
func (r *GormUserRepository) Update(ctx context.Context, id uint, fields UserFields) (bool, error) {
	updates := map[string]interface{}{}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if len(updates) == 0 {
		return false, nil
	}

	// updated_at 由 gorm 自动刷新
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	return r.Exists(ctx, id)
}

// Delete 硬删除用户，页面由外键级联删除
func (r *GormUserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 用户列表，按创建时间倒序
func (r *GormUserRepository) List(ctx context.Context, filter UserListFilter) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.User{})
		if filter.Search != "" {
			condition, count := buildLikeCondition(r.db, "users.email")
			query = query.Where(condition, repeatLikeArgs(escapeLike(filter.Search), count)...)
		}
		if filter.Status != "" {
			query = query.Where("users.status = ?", filter.Status)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyPagination(base().Select("users.*, "+pagesCountColumn), filter.Page, filter.PageSize)

	users := make([]models.User, 0)
	if err := query.Order("users.created_at DESC").Order("users.id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
