package service

import (
	"context"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/repository"

	"github.com/shopspring/decimal"
)

const dashboardWeek = 7 * 24 * time.Hour

// DashboardService 仪表盘服务
// 说明：每次调用都重新聚合，不做缓存，统一使用 UTC。
type DashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// DashboardData 仪表盘完整数据
type DashboardData struct {
	Stats         DashboardStats        `json:"stats"`
	UsersChart    []DashboardUsersPoint `json:"usersChart"`
	ActivityChart []DashboardPagesPoint `json:"activityChart"`
	RecentUsers   []DashboardRecentUser `json:"recentUsers"`
}

// DashboardStats 核心指标
type DashboardStats struct {
	TotalUsers           int64 `json:"totalUsers"`
	VerifiedUsers        int64 `json:"verifiedUsers"`
	TotalPages           int64 `json:"totalPages"`
	ActivityPercent      int64 `json:"activityPercent"`
	NewUsersCurrentWeek  int64 `json:"newUsersCurrentWeek"`
	NewUsersPreviousWeek int64 `json:"newUsersPreviousWeek"`
}

// DashboardUsersPoint 月度注册数
type DashboardUsersPoint struct {
	Month string `json:"month"`
	Users int64  `json:"users"`
}

// DashboardPagesPoint 每日新建页面数
type DashboardPagesPoint struct {
	Date  string `json:"date"`
	Pages int64  `json:"pages"`
}

// DashboardRecentUser 最近注册用户
type DashboardRecentUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetData 聚合仪表盘数据
func (s *DashboardService) GetData(ctx context.Context) (*DashboardData, error) {
	now := s.now().UTC()
	window := repository.DashboardWindow{
		CurrentStart:  now.Add(-dashboardWeek),
		PreviousStart: now.Add(-2 * dashboardWeek),
	}

	overview, err := s.repo.GetOverview(ctx, window)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(constants.DashboardUsersChartMonths - 1), 0)
	monthRows, err := s.repo.GetUserRegistrations(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(constants.DashboardActivityChartDays - 1))
	dayRows, err := s.repo.GetPageActivity(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.GetRecentUsers(ctx, constants.DashboardRecentUsersLimit)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Stats: DashboardStats{
			TotalUsers:           overview.TotalUsers,
			VerifiedUsers:        overview.VerifiedUsers,
			TotalPages:           overview.TotalPages,
			ActivityPercent:      ActivityPercent(overview.NewUsersCurrent, overview.NewUsersPrevious),
			NewUsersCurrentWeek:  overview.NewUsersCurrent,
			NewUsersPreviousWeek: overview.NewUsersPrevious,
		},
		UsersChart:    fillMonths(monthStart, monthRows),
		ActivityChart: fillDays(dayStart, dayRows),
		RecentUsers:   make([]DashboardRecentUser, 0, len(recent)),
	}
	for _, user := range recent {
		data.RecentUsers = append(data.RecentUsers, DashboardRecentUser{
			ID:        user.ID,
			Email:     user.Email,
			Status:    user.Status,
			CreatedAt: user.CreatedAt.UTC(),
		})
	}
	return data, nil
}

// ActivityPercent 新增用户环比：上周为 0 时本周有新增记 100，否则 0
func ActivityPercent(current, previous int64) int64 {
	if previous > 0 {
		return decimal.NewFromInt(current - previous).
			Div(decimal.NewFromInt(previous)).
			Mul(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}
	if current > 0 {
		return 100
	}
	return 0
}

// fillMonths 补齐没有注册的月份
func fillMonths(start time.Time, rows []repository.DashboardMonthRow) []DashboardUsersPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Month] += row.Users
	}
	points := make([]DashboardUsersPoint, 0, constants.DashboardUsersChartMonths)
	for i := 0; i < constants.DashboardUsersChartMonths; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		points = append(points, DashboardUsersPoint{Month: month, Users: counts[month]})
	}
	return points
}

// fillDays 补齐没有新建页面的日期
func fillDays(start time.Time, rows []repository.DashboardDayRow) []DashboardPagesPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day] += row.Pages
	}
	points := make([]DashboardPagesPoint, 0, constants.DashboardActivityChartDays)
	for i := 0; i < constants.DashboardActivityChartDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, DashboardPagesPoint{Date: day, Pages: counts[day]})
	}
	return points
}
