package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestActivityPercent(t *testing.T) {
	cases := []struct {
		current, previous int64
		want              int64
	}{
		{5, 0, 100},
		{15, 10, 50},
		{0, 0, 0},
		{0, 4, -100},
		{1, 3, -67},
		{2, 3, -33},
		{4, 3, 33},
		{3, 2, 50},
	}
	for _, tc := range cases {
		if got := ActivityPercent(tc.current, tc.previous); got != tc.want {
			t.Fatalf("ActivityPercent(%d, %d) = %d, want %d", tc.current, tc.previous, got, tc.want)
		}
	}
}

type dashboardRepoStub struct {
	overview  repository.DashboardOverviewRow
	months    []repository.DashboardMonthRow
	days      []repository.DashboardDayRow
	recent    []models.User
	err       error
	gotWindow repository.DashboardWindow
}

func (s *dashboardRepoStub) GetOverview(_ context.Context, window repository.DashboardWindow) (repository.DashboardOverviewRow, error) {
	s.gotWindow = window
	return s.overview, s.err
}

func (s *dashboardRepoStub) GetUserRegistrations(context.Context, time.Time) ([]repository.DashboardMonthRow, error) {
	return s.months, nil
}

func (s *dashboardRepoStub) GetPageActivity(context.Context, time.Time) ([]repository.DashboardDayRow, error) {
	return s.days, nil
}

func (s *dashboardRepoStub) GetRecentUsers(context.Context, int) ([]models.User, error) {
	return s.recent, nil
}

func TestDashboardServiceFillsChartGaps(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	stub := &dashboardRepoStub{
		overview: repository.DashboardOverviewRow{TotalUsers: 9, VerifiedUsers: 4, TotalPages: 12, NewUsersCurrent: 15, NewUsersPrevious: 10},
		months:   []repository.DashboardMonthRow{{Month: "2025-11", Users: 2}, {Month: "2026-03", Users: 7}},
		days:     []repository.DashboardDayRow{{Day: "2026-03-09", Pages: 1}, {Day: "2026-03-15", Pages: 3}},
		recent:   []models.User{{ID: 3, Email: "c@example.com", Status: constants.UserStatusPending, CreatedAt: now}},
	}
	svc := NewDashboardService(stub)
	svc.now = func() time.Time { return now }

	data, err := svc.GetData(context.Background())
	require.NoError(t, err)

	require.Equal(t, now.Add(-7*24*time.Hour), stub.gotWindow.CurrentStart)
	require.Equal(t, now.Add(-14*24*time.Hour), stub.gotWindow.PreviousStart)

	require.EqualValues(t, 50, data.Stats.ActivityPercent)
	require.EqualValues(t, 15, data.Stats.NewUsersCurrentWeek)
	require.EqualValues(t, 10, data.Stats.NewUsersPreviousWeek)

	require.Len(t, data.UsersChart, constants.DashboardUsersChartMonths)
	require.Equal(t, DashboardUsersPoint{Month: "2025-10", Users: 0}, data.UsersChart[0])
	require.Equal(t, DashboardUsersPoint{Month: "2025-11", Users: 2}, data.UsersChart[1])
	require.Equal(t, DashboardUsersPoint{Month: "2026-03", Users: 7}, data.UsersChart[5])

	require.Len(t, data.ActivityChart, constants.DashboardActivityChartDays)
	require.Equal(t, DashboardPagesPoint{Date: "2026-03-09", Pages: 1}, data.ActivityChart[0])
	require.Equal(t, DashboardPagesPoint{Date: "2026-03-12", Pages: 0}, data.ActivityChart[3])
	require.Equal(t, DashboardPagesPoint{Date: "2026-03-15", Pages: 3}, data.ActivityChart[6])

	require.Len(t, data.RecentUsers, 1)
	require.Equal(t, "c@example.com", data.RecentUsers[0].Email)
}

func TestDashboardServicePropagatesStoreErrors(t *testing.T) {
	svc := NewDashboardService(&dashboardRepoStub{err: errors.New("db down")})
	_, err := svc.GetData(context.Background())
	require.EqualError(t, err, "db down")
}

func TestDashboardServiceAgainstStore(t *testing.T) {
	db := setupServiceDB(t)
	now := time.Now().UTC()

	seed := []struct {
		email  string
		status string
		age    time.Duration
	}{
		{"a@example.com", constants.UserStatusVerified, 2 * 24 * time.Hour},
		{"b@example.com", constants.UserStatusPending, 3 * 24 * time.Hour},
		{"c@example.com", constants.UserStatusVerified, 10 * 24 * time.Hour},
		{"d@example.com", constants.UserStatusBlocked, 40 * 24 * time.Hour},
	}
	var firstID uint
	for _, row := range seed {
		user := &models.User{Email: row.email, PasswordHash: "hash", Status: row.status, CreatedAt: now.Add(-row.age)}
		require.NoError(t, db.Create(user).Error)
		if firstID == 0 {
			firstID = user.ID
		}
	}
	page := &models.Page{UserID: firstID, Title: "today", CreatedAt: now}
	require.NoError(t, db.Omit("User").Create(page).Error)

	data, err := NewDashboardService(repository.NewDashboardRepository(db)).GetData(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, data.Stats.TotalUsers)
	require.EqualValues(t, 2, data.Stats.VerifiedUsers)
	require.EqualValues(t, 1, data.Stats.TotalPages)
	require.EqualValues(t, 2, data.Stats.NewUsersCurrentWeek)
	require.EqualValues(t, 1, data.Stats.NewUsersPreviousWeek)
	require.EqualValues(t, 100, data.Stats.ActivityPercent)
	require.EqualValues(t, 1, data.ActivityChart[len(data.ActivityChart)-1].Pages)
	require.Len(t, data.RecentUsers, 4)
	require.Equal(t, "a@example.com", data.RecentUsers[0].Email)

	var registered int64
	for _, point := range data.UsersChart {
		registered += point.Users
	}
	require.EqualValues(t, 4, registered)
}
