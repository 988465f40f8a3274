package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := models.OpenDB(models.OpenOptions{Driver: constants.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if _, err := models.EnsureTables(db); err != nil {
		t.Fatalf("create tables failed: %v", err)
	}
	t.Cleanup(func() { _ = models.Close(db) })
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, status string, createdAt time.Time) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hash", Status: status, CreatedAt: createdAt, UpdatedAt: createdAt, LastActive: createdAt}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestPage(t *testing.T, db *gorm.DB, userID uint, title, content string, at time.Time) *models.Page {
	t.Helper()
	page := &models.Page{UserID: userID, Title: title, Content: content, CreatedAt: at, UpdatedAt: at}
	if err := db.Omit("User").Create(page).Error; err != nil {
		t.Fatalf("create page failed: %v", err)
	}
	return page
}

func TestUserRepositoryGetIncludesPagesCount(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	user := createTestUser(t, db, "writer@example.com", constants.UserStatusVerified, now)
	createTestPage(t, db, user.ID, "a", "", now)
	createTestPage(t, db, user.ID, "b", "", now)

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if got == nil || got.PagesCount != 2 {
		t.Fatalf("expected pages count 2, got %+v", got)
	}

	missing, err := repo.GetByID(ctx, user.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("missing user should be nil,nil got %+v %v", missing, err)
	}
}

func TestUserRepositoryListFilterAndPagination(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 25; i++ {
		status := constants.UserStatusPending
		if i%5 == 0 {
			status = constants.UserStatusVerified
		}
		createTestUser(t, db, fmt.Sprintf("user%02d@example.com", i), status, base.Add(time.Duration(i)*time.Minute))
	}
	createTestUser(t, db, "other@test.org", constants.UserStatusBlocked, base)

	all, total, err := repo.List(ctx, UserListFilter{Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if total != 26 || len(all) != 26 {
		t.Fatalf("unexpected totals: total=%d len=%d", total, len(all))
	}

	first, total, err := repo.List(ctx, UserListFilter{Page: 1, PageSize: 10, Search: "example.com"})
	if err != nil {
		t.Fatalf("list page 1 failed: %v", err)
	}
	second, total2, err := repo.List(ctx, UserListFilter{Page: 2, PageSize: 10, Search: "example.com"})
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if total != 25 || total2 != 25 {
		t.Fatalf("total must ignore pagination: %d %d", total, total2)
	}
	if len(first) != 10 || len(second) != 10 {
		t.Fatalf("unexpected page sizes: %d %d", len(first), len(second))
	}
	seen := map[uint]bool{}
	for _, u := range first {
		seen[u.ID] = true
	}
	for _, u := range second {
		if seen[u.ID] {
			t.Fatalf("page 2 overlaps page 1 on id %d", u.ID)
		}
	}
	if first[0].Email != "user24@example.com" {
		t.Fatalf("expected newest user first, got %s", first[0].Email)
	}

	verified, total, err := repo.List(ctx, UserListFilter{Page: 1, PageSize: 10, Status: constants.UserStatusVerified})
	if err != nil {
		t.Fatalf("list verified failed: %v", err)
	}
	if total != 5 || len(verified) != 5 {
		t.Fatalf("expected 5 verified users, got total=%d len=%d", total, len(verified))
	}

	literal, total, err := repo.List(ctx, UserListFilter{Page: 1, PageSize: 10, Search: "%"})
	if err != nil {
		t.Fatalf("list with wildcard search failed: %v", err)
	}
	if total != 0 || len(literal) != 0 {
		t.Fatalf("wildcard should match literally, got %d", total)
	}
}

func TestUserRepositoryUpdateAndDelete(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "before@example.com", constants.UserStatusPending, time.Now().UTC())

	status := constants.UserStatusBlocked
	found, err := repo.Update(ctx, user.ID, UserFields{Status: &status})
	if err != nil || !found {
		t.Fatalf("update failed: found=%v err=%v", found, err)
	}
	got, _ := repo.GetByID(ctx, user.ID)
	if got.Status != status || got.Email != "before@example.com" {
		t.Fatalf("partial update changed unexpected fields: %+v", got)
	}

	found, err = repo.Update(ctx, user.ID+99, UserFields{Status: &status})
	if err != nil || found {
		t.Fatalf("update of missing user should report not found: found=%v err=%v", found, err)
	}

	taken, err := repo.EmailTaken(ctx, "before@example.com", user.ID)
	if err != nil || taken {
		t.Fatalf("own email should not count as taken: %v %v", taken, err)
	}

	deleted, err := repo.Delete(ctx, user.ID)
	if err != nil || !deleted {
		t.Fatalf("delete failed: deleted=%v err=%v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, user.ID)
	if err != nil || deleted {
		t.Fatalf("second delete should affect nothing: deleted=%v err=%v", deleted, err)
	}
}

func TestPageRepositoryListSearchAndOwner(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPageRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := createTestUser(t, db, "alice@example.com", constants.UserStatusVerified, now)
	bob := createTestUser(t, db, "bob@example.com", constants.UserStatusVerified, now)
	createTestPage(t, db, alice.ID, "Groceries", "milk and eggs", now.Add(-3*time.Minute))
	createTestPage(t, db, alice.ID, "Ideas", "build a GROCERY app", now.Add(-2*time.Minute))
	createTestPage(t, db, bob.ID, "Travel", "pack bags", now.Add(-time.Minute))

	pages, total, err := repo.List(ctx, PageListFilter{Page: 1, PageSize: 20, Search: "grocer"})
	if err != nil {
		t.Fatalf("list pages failed: %v", err)
	}
	if total != 2 || len(pages) != 2 {
		t.Fatalf("search should match title or content case-insensitively, total=%d", total)
	}
	if pages[0].Title != "Ideas" {
		t.Fatalf("expected most recently updated first, got %s", pages[0].Title)
	}
	if pages[0].UserEmail != "alice@example.com" {
		t.Fatalf("expected owner email, got %q", pages[0].UserEmail)
	}

	bobPages, total, err := repo.List(ctx, PageListFilter{Page: 1, PageSize: 20, UserID: bob.ID})
	if err != nil {
		t.Fatalf("list bob pages failed: %v", err)
	}
	if total != 1 || bobPages[0].Title != "Travel" {
		t.Fatalf("owner filter mismatch: total=%d", total)
	}
}

func TestPageRepositoryUpdateKeepsEmptyContent(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPageRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "owner@example.com", constants.UserStatusPending, time.Now().UTC())
	page := createTestPage(t, db, user.ID, "Draft", "text", time.Now().UTC().Add(-time.Hour))

	empty := ""
	found, err := repo.Update(ctx, page.ID, PageFields{Content: &empty})
	if err != nil || !found {
		t.Fatalf("update page failed: found=%v err=%v", found, err)
	}
	got, err := repo.GetByID(ctx, page.ID)
	if err != nil || got == nil {
		t.Fatalf("get page failed: %v", err)
	}
	if got.Content != "" || got.Title != "Draft" {
		t.Fatalf("unexpected page after update: %+v", got)
	}
	if !got.UpdatedAt.After(page.UpdatedAt) {
		t.Fatalf("updated_at should be refreshed")
	}
}

func TestDashboardRepositoryAggregates(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	current := createTestUser(t, db, "new@example.com", constants.UserStatusVerified, now.Add(-24*time.Hour))
	createTestUser(t, db, "recent@example.com", constants.UserStatusPending, now.Add(-2*24*time.Hour))
	createTestUser(t, db, "prev@example.com", constants.UserStatusVerified, now.Add(-10*24*time.Hour))
	createTestUser(t, db, "old@example.com", constants.UserStatusBlocked, now.Add(-90*24*time.Hour))
	createTestPage(t, db, current.ID, "today", "", now)
	createTestPage(t, db, current.ID, "today again", "", now)
	createTestPage(t, db, current.ID, "long ago", "", now.Add(-30*24*time.Hour))

	window := DashboardWindow{CurrentStart: now.Add(-7 * 24 * time.Hour), PreviousStart: now.Add(-14 * 24 * time.Hour)}
	overview, err := repo.GetOverview(ctx, window)
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if overview.TotalUsers != 4 || overview.VerifiedUsers != 2 || overview.TotalPages != 3 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
	if overview.NewUsersCurrent != 2 || overview.NewUsersPrevious != 1 {
		t.Fatalf("unexpected window counts: %+v", overview)
	}

	days, err := repo.GetPageActivity(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("get page activity failed: %v", err)
	}
	if len(days) != 1 || days[0].Day != now.Format("2006-01-02") || days[0].Pages != 2 {
		t.Fatalf("unexpected page activity: %+v", days)
	}

	months, err := repo.GetUserRegistrations(ctx, now.AddDate(0, -6, 0))
	if err != nil {
		t.Fatalf("get registrations failed: %v", err)
	}
	var sum int64
	for _, row := range months {
		if len(row.Month) != len("2006-01") {
			t.Fatalf("unexpected month label: %q", row.Month)
		}
		sum += row.Users
	}
	if sum != 4 {
		t.Fatalf("expected 4 registrations in six months, got %d", sum)
	}

	recent, err := repo.GetRecentUsers(ctx, 2)
	if err != nil {
		t.Fatalf("get recent users failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Email != "new@example.com" {
		t.Fatalf("unexpected recent users: %+v", recent)
	}
}
