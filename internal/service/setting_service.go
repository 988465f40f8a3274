package service

import (
	"context"
	"strings"

	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"
)

// SettingService 系统设置读写
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// List 全部系统设置
func (s *SettingService) List(ctx context.Context) ([]models.SystemSetting, error) {
	return s.repo.List(ctx)
}

// Update 写入设置值，不存在时新建
func (s *SettingService) Update(ctx context.Context, key, value string) (*models.SystemSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrSettingKeyRequired
	}
	return s.repo.Upsert(ctx, key, value)
}
