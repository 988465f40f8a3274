package repository

import (
	"context"
	"errors"

	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

// SettingRepository 系统设置数据访问接口
type SettingRepository interface {
	List(ctx context.Context) ([]models.SystemSetting, error)
	GetByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) (*models.SystemSetting, error)
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// List 全部设置，按键排序
func (r *GormSettingRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	settings := make([]models.SystemSetting, 0)
	if err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetByKey 获取设置
func (r *GormSettingRepository) GetByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).Take(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert 更新或创建设置，已有记录保留说明
func (r *GormSettingRepository) Upsert(ctx context.Context, key, value string) (*models.SystemSetting, error) {
	setting, err := r.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		setting = &models.SystemSetting{
			Key:   key,
			Value: value,
		}
		if err := r.db.WithContext(ctx).Create(setting).Error; err != nil {
			return nil, err
		}
		return setting, nil
	}

	setting.Value = value
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}
