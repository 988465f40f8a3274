package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/textpages-admin/internal/authz"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/http/handlers/shared"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/provider"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: config.EnvProduction},
		Database: config.DatabaseConfig{Driver: constants.DriverSQLite},
		JWT:      config.JWTConfig{SecretKey: "router-test-secret-router-test-secret", ExpireHours: 1},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Security: config.SecurityConfig{
			RequireAuth:           true,
			AnonymousProvisioning: true,
		},
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := models.OpenDB(models.OpenOptions{Driver: constants.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	if _, err := models.EnsureTables(db); err != nil {
		t.Fatalf("ensure tables failed: %v", err)
	}

	hasher := credential.NewPasswordHasher("")
	for _, admin := range []struct{ username, role string }{
		{"admin", constants.AdminRoleAdmin},
		{"viewer", constants.AdminRoleViewer},
	} {
		hash, err := hasher.Hash(admin.username + "-pass")
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		row := &models.AdminUser{Username: admin.username, Email: admin.username + "@example.com", PasswordHash: hash, Role: admin.role}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("create admin failed: %v", err)
		}
	}

	container, err := provider.NewContainer(cfg, db, nil)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return &testServer{engine: SetupRouter(cfg, container), db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Body.Len() == 0 {
		return w, testEnvelope{}
	}
	return w, decodeEnvelope(t, w)
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth", "", map[string]string{
		"action":   "login",
		"username": username,
		"password": username + "-pass",
	})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login should return token: %v %s", err, string(env.Data))
	}
	return data.Token
}

func TestUnknownActionIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "admin")

	w, env := s.do(t, http.MethodPost, "/api/users", token, map[string]string{"action": "drop_everything"})
	if w.Code != http.StatusBadRequest || env.Error != "Invalid action" {
		t.Fatalf("unknown action want 400 Invalid action, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodGet, "/api/pages", token, nil)
	if w.Code != http.StatusBadRequest || env.Error != "Invalid action" {
		t.Fatalf("missing action want 400 Invalid action, got %d %q", w.Code, env.Error)
	}
}

func TestAuthGatedActions(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodGet, "/api/users?action=get_users", "", nil)
	if w.Code != http.StatusUnauthorized || env.Error != shared.MsgTokenRequired {
		t.Fatalf("want 401 Token required, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodGet, "/api/users?action=get_users", "garbage", nil)
	if w.Code != http.StatusUnauthorized || env.Error != shared.MsgInvalidToken {
		t.Fatalf("want 401 Invalid token, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodPost, "/api/auth", "", map[string]string{"action": "login", "username": "admin", "password": "nope"})
	if w.Code != http.StatusUnauthorized || env.Error != "Invalid username or password" {
		t.Fatalf("bad password want 401, got %d %q", w.Code, env.Error)
	}

	token := s.login(t, "admin")
	w, env = s.do(t, http.MethodPost, "/api/auth", token, map[string]string{"action": "verify_token"})
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"username":"admin"`) {
		t.Fatalf("verify_token failed: %d %s", w.Code, w.Body.String())
	}
}

func TestViewerCannotWrite(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "viewer")

	w, _ := s.do(t, http.MethodPost, "/api/users", token, map[string]string{"action": "get_users"})
	if w.Code != http.StatusOK {
		t.Fatalf("viewer list want 200 got %d", w.Code)
	}
	w, env := s.do(t, http.MethodPost, "/api/users", token, map[string]string{"action": "create_user", "email": "x@example.com"})
	if w.Code != http.StatusForbidden || env.Error != shared.MsgForbidden {
		t.Fatalf("viewer create want 403, got %d %q", w.Code, env.Error)
	}
}

func TestUserAndPageLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "admin")

	w, env := s.do(t, http.MethodPost, "/api/users.php", token, map[string]string{"action": "create_user", "email": "owner@example.com"})
	if w.Code != http.StatusOK || env.Message != "User created successfully" {
		t.Fatalf("create user failed: %d %s", w.Code, w.Body.String())
	}
	var user struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user failed: %v", err)
	}
	if user.Status != constants.UserStatusPending {
		t.Fatalf("default status want pending got %s", user.Status)
	}

	w, env = s.do(t, http.MethodPost, "/api/users", token, map[string]string{"action": "create_user", "email": "owner@example.com"})
	if w.Code != http.StatusConflict || env.Error != "User with this email already exists" {
		t.Fatalf("duplicate email want 409, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodPost, "/api/pages", token, map[string]interface{}{
		"action": "create_page", "user_id": fmt.Sprint(user.ID), "title": "Note", "content": "hi",
	})
	if w.Code != http.StatusOK || env.Message != "Page created successfully" {
		t.Fatalf("create page failed: %d %s", w.Code, w.Body.String())
	}
	var page struct {
		ID        uint   `json:"id"`
		UserID    uint   `json:"user_id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		UserEmail string `json:"userEmail"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page failed: %v", err)
	}
	if page.UserID != user.ID || page.Title != "Note" || page.Content != "hi" || page.UserEmail != "owner@example.com" {
		t.Fatalf("unexpected page payload: %+v", page)
	}

	w, env = s.do(t, http.MethodPost, "/api/pages", token, map[string]interface{}{"action": "create_page", "user_id": 9999, "title": "Orphan"})
	if w.Code != http.StatusBadRequest || env.Error != "User does not exist" {
		t.Fatalf("orphan page want 400, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodPost, "/api/pages", token, map[string]interface{}{"action": "update_page", "id": page.ID, "content": ""})
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"content":""`) {
		t.Fatalf("empty content update should apply: %d %s", w.Code, w.Body.String())
	}

	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/users/%d", user.ID), token, nil)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"pagesCount":1`) {
		t.Fatalf("rest get user failed: %d %s", w.Code, w.Body.String())
	}

	w, env = s.do(t, http.MethodGet, "/api/users?action=get_users&limit=500", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list users failed: %d", w.Code)
	}
	var list struct {
		Items []json.RawMessage `json:"items"`
		Users []json.RawMessage `json:"users"`
		Total int64             `json:"total"`
		Limit int               `json:"limit"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list failed: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 || len(list.Users) != 1 || list.Limit != 100 {
		t.Fatalf("unexpected list payload: %s", string(env.Data))
	}

	for _, page := range []string{"99999999999999999999", "1e300"} {
		w, env = s.do(t, http.MethodPost, "/api/users", token, json.RawMessage(`{"action":"get_users","page":`+page+`}`))
		if w.Code != http.StatusOK {
			t.Fatalf("huge page %s failed: %d", page, w.Code)
		}
		var far struct {
			Items []json.RawMessage `json:"items"`
			Total int64             `json:"total"`
			Page  int               `json:"page"`
		}
		if err := json.Unmarshal(env.Data, &far); err != nil {
			t.Fatalf("decode list failed: %v", err)
		}
		if len(far.Items) != 0 || far.Total != 1 || far.Page <= 1 {
			t.Fatalf("huge page %s must be past the last row, got %s", page, string(env.Data))
		}
	}

	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", user.ID), token, nil)
	if w.Code != http.StatusOK || env.Message != "User deleted successfully" {
		t.Fatalf("delete user failed: %d %s", w.Code, w.Body.String())
	}
	w, env = s.do(t, http.MethodPost, "/api/pages", token, map[string]interface{}{"action": "get_page", "id": page.ID})
	if w.Code != http.StatusNotFound || env.Error != "Page not found" {
		t.Fatalf("cascaded page want 404, got %d %q", w.Code, env.Error)
	}
}

func TestDashboardAction(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "viewer")

	w, env := s.do(t, http.MethodPost, "/api/dashboard", token, map[string]string{"action": "get_dashboard_data"})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("dashboard failed: %d %s", w.Code, w.Body.String())
	}
	for _, key := range []string{`"stats"`, `"usersChart"`, `"activityChart"`, `"recentUsers"`} {
		if !strings.Contains(string(env.Data), key) {
			t.Fatalf("dashboard payload missing %s: %s", key, string(env.Data))
		}
	}
}

func TestRequireAuthDisabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RequireAuth = false
	})

	w, env := s.do(t, http.MethodGet, "/api/users?action=get_users", "", nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("open users endpoint want 200, got %d %s", w.Code, w.Body.String())
	}
	w, env = s.do(t, http.MethodPost, "/api/settings", "", map[string]string{"action": "reload_config"})
	if w.Code != http.StatusUnauthorized || env.Error != shared.MsgTokenRequired {
		t.Fatalf("reload_config always needs a token, got %d %q", w.Code, env.Error)
	}
}

func TestProvisioningActionsOpenDuringSetup(t *testing.T) {
	s := newTestServer(t, nil)
	if err := s.db.Where("1 = 1").Delete(&models.AdminUser{}).Error; err != nil {
		t.Fatalf("clear admins failed: %v", err)
	}

	w, env := s.do(t, http.MethodPost, "/api/settings.php", "", map[string]interface{}{
		"action": "test_db_connection",
		"config": map[string]interface{}{"driver": "oracle", "database": "x"},
	})
	if w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("unsupported driver want 400, got %d %s", w.Code, w.Body.String())
	}

	w, env = s.do(t, http.MethodPost, "/api/settings", "", map[string]interface{}{
		"action": "test_db_connection",
		"config": map[string]interface{}{"driver": "postgres", "host": "127.0.0.1", "port": "1", "database": "none", "username": "u"},
	})
	if w.Code != http.StatusBadRequest || !strings.HasPrefix(env.Error, "Connection failed") {
		t.Fatalf("unreachable store want 400 Connection failed, got %d %q", w.Code, env.Error)
	}

	w, env = s.do(t, http.MethodPost, "/api/settings", "", map[string]string{"action": "get_system_settings"})
	if w.Code != http.StatusUnauthorized || env.Error != shared.MsgTokenRequired {
		t.Fatalf("get_system_settings needs a token, got %d %q", w.Code, env.Error)
	}
}

func TestProvisioningActionsLockedAfterSetup(t *testing.T) {
	s := newTestServer(t, nil)
	target := filepath.Join(t.TempDir(), "other", "owned.db")
	body := map[string]interface{}{
		"action": "save_db_config",
		"config": map[string]interface{}{"driver": "sqlite", "database": target},
	}

	for _, path := range []string{"/api/settings", "/api/settings.php"} {
		w, env := s.do(t, http.MethodPost, path, "", body)
		if w.Code != http.StatusUnauthorized || env.Error != shared.MsgTokenRequired {
			t.Fatalf("%s: anonymous save_db_config want 401, got %d %s", path, w.Code, w.Body.String())
		}
	}
	for _, action := range []string{"create_tables", "test_db_connection"} {
		w, _ := s.do(t, http.MethodPost, "/api/settings", "", map[string]interface{}{
			"action": action,
			"config": map[string]interface{}{"driver": "sqlite", "database": target},
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous %s want 401, got %d", action, w.Code)
		}
	}
	w, _ := s.do(t, http.MethodPost, "/api/v1/admin/settings/db/tables", "", body["config"])
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous REST create tables want 401, got %d", w.Code)
	}
	if _, err := os.Stat(filepath.Dir(target)); !os.IsNotExist(err) {
		t.Fatalf("rejected request must not touch the filesystem: %v", err)
	}

	viewer := s.login(t, "viewer")
	w, _ = s.do(t, http.MethodPost, "/api/settings", viewer, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer save_db_config want 403 got %d", w.Code)
	}
	w, _ = s.do(t, http.MethodPost, "/api/settings", viewer, map[string]string{"action": "get_system_settings"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer settings want 403 got %d", w.Code)
	}

	admin := s.login(t, "admin")
	w, env := s.do(t, http.MethodPost, "/api/settings", admin, map[string]interface{}{
		"action": "test_db_connection",
		"config": map[string]interface{}{"driver": "oracle", "database": "x"},
	})
	if w.Code != http.StatusBadRequest || !strings.HasPrefix(env.Error, "Unsupported database driver") {
		t.Fatalf("admin test_db_connection want 400 from the handler, got %d %q", w.Code, env.Error)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assertEnvelopeError(t, w, http.StatusBadRequest, "Invalid JSON body")
}

func TestPermissionCatalog(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "admin")

	w, env := s.do(t, http.MethodGet, "/api/v1/admin/permissions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("permissions failed: %d", w.Code)
	}
	var body struct {
		Catalog []permissionCatalogItem `json:"catalog"`
		Granted []authz.Policy          `json:"granted"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode catalog failed: %v", err)
	}
	if len(body.Granted) == 0 {
		t.Fatalf("admin role should have granted policies")
	}
	found := false
	for _, item := range body.Catalog {
		if item.Group == constants.GroupUsers && item.Action == constants.ActionCreateUser {
			found = item.Permission == "users:write" && !item.Public
		}
	}
	if !found {
		t.Fatalf("catalog should list users.create_user as users:write")
	}
}
