package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(ctx context.Context, window DashboardWindow) (DashboardOverviewRow, error)
	GetUserRegistrations(ctx context.Context, since time.Time) ([]DashboardMonthRow, error)
	GetPageActivity(ctx context.Context, since time.Time) ([]DashboardDayRow, error)
	GetRecentUsers(ctx context.Context, limit int) ([]models.User, error)
}

// DashboardWindow 新增用户对比窗口：[PreviousStart, CurrentStart) 与 [CurrentStart, +∞)
type DashboardWindow struct {
	CurrentStart  time.Time
	PreviousStart time.Time
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	TotalUsers       int64
	VerifiedUsers    int64
	TotalPages       int64
	NewUsersCurrent  int64
	NewUsersPrevious int64
}

// DashboardMonthRow 月度注册统计
type DashboardMonthRow struct {
	Month string
	Users int64
}

// DashboardDayRow 每日页面创建统计
type DashboardDayRow struct {
	Day   string
	Pages int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(ctx context.Context, window DashboardWindow) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&result.TotalUsers).Error; err != nil {
		return result, err
	}
	if err := db.Model(&models.User{}).
		Where("status = ?", constants.UserStatusVerified).
		Count(&result.VerifiedUsers).Error; err != nil {
		return result, err
	}
	if err := db.Model(&models.Page{}).Count(&result.TotalPages).Error; err != nil {
		return result, err
	}
	if err := db.Model(&models.User{}).
		Where("created_at >= ?", window.CurrentStart).
		Count(&result.NewUsersCurrent).Error; err != nil {
		return result, err
	}
	if err := db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", window.PreviousStart, window.CurrentStart).
		Count(&result.NewUsersPrevious).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetUserRegistrations 按月统计注册用户
func (r *GormDashboardRepository) GetUserRegistrations(ctx context.Context, since time.Time) ([]DashboardMonthRow, error) {
	monthExpr := monthExprByDialect(dbDialectName(r.db), "created_at")
	rows := make([]DashboardMonthRow, 0)
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(fmt.Sprintf("%s AS month, COUNT(*) AS users", monthExpr)).
		Where("created_at >= ?", since).
		Group(monthExpr).
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPageActivity 按天统计新建页面
func (r *GormDashboardRepository) GetPageActivity(ctx context.Context, since time.Time) ([]DashboardDayRow, error) {
	dayExpr := dayExprByDialect(dbDialectName(r.db), "created_at")
	rows := make([]DashboardDayRow, 0)
	if err := r.db.WithContext(ctx).Model(&models.Page{}).
		Select(fmt.Sprintf("%s AS day, COUNT(*) AS pages", dayExpr)).
		Where("created_at >= ?", since).
		Group(dayExpr).
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRecentUsers 最近注册的用户
func (r *GormDashboardRepository) GetRecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = constants.DashboardRecentUsersLimit
	}
	users := make([]models.User, 0, limit)
	if err := r.db.WithContext(ctx).
		Select("id", "email", "status", "created_at").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
