package constants

// 用户状态常量
const (
	UserStatusPending  = "pending"
	UserStatusVerified = "verified"
	UserStatusBlocked  = "blocked"
)

// UserStatuses 允许写入的用户状态
var UserStatuses = []string{UserStatusPending, UserStatusVerified, UserStatusBlocked}

// 管理员角色常量
const (
	AdminRoleAdmin  = "admin"
	AdminRoleViewer = "viewer"
)

// 数据库驱动常量
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// 动作分组（同时作为权限资源名）
const (
	GroupAuth      = "auth"
	GroupUsers     = "users"
	GroupPages     = "pages"
	GroupDashboard = "dashboard"
	GroupSettings  = "settings"
)

// 认证动作
const (
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionVerifyToken = "verify_token"
	ActionCaptcha     = "captcha"
)

// 用户动作
const (
	ActionGetUsers   = "get_users"
	ActionGetUser    = "get_user"
	ActionCreateUser = "create_user"
	ActionUpdateUser = "update_user"
	ActionDeleteUser = "delete_user"
)

// 页面动作
const (
	ActionGetPages   = "get_pages"
	ActionGetPage    = "get_page"
	ActionCreatePage = "create_page"
	ActionUpdatePage = "update_page"
	ActionDeletePage = "delete_page"
)

// 仪表盘与设置动作
const (
	ActionGetDashboardData    = "get_dashboard_data"
	ActionTestDBConnection    = "test_db_connection"
	ActionCreateTables        = "create_tables"
	ActionSaveDBConfig        = "save_db_config"
	ActionGetSystemSettings   = "get_system_settings"
	ActionUpdateSystemSetting = "update_system_setting"
	ActionReloadConfig        = "reload_config"
)

// 权限动作类别
const (
	PermRead  = "read"
	PermWrite = "write"
)

// 系统设置键
const (
	SettingSMTPHost       = "smtp_host"
	SettingSMTPPort       = "smtp_port"
	SettingSMTPUsername   = "smtp_username"
	SettingSMTPPassword   = "smtp_password"
	SettingSMTPEncryption = "smtp_encryption"
	SettingSiteURL        = "site_url"
	SettingAdminEmail     = "admin_email"
)

// 仪表盘统计窗口
const (
	DashboardUsersChartMonths  = 6
	DashboardActivityChartDays = 7
	DashboardRecentUsersLimit  = 5
)
