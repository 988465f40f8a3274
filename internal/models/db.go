package models

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// OpenOptions 打开数据库的参数
type OpenOptions struct {
	Driver string
	DSN    string
	Pool   DBPoolConfig
	Debug  bool // 输出全部 SQL
}

// NormalizeDriver 统一驱动名称，空值视为 sqlite
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", constants.DriverSQLite, "sqlite3":
		return constants.DriverSQLite, nil
	case constants.DriverPostgres, "postgresql", "pgsql":
		return constants.DriverPostgres, nil
	case constants.DriverMySQL, "mariadb":
		return constants.DriverMySQL, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// BuildDSN 根据连接参数拼装驱动可识别的 DSN；params.DSN 非空时原样返回
func BuildDSN(driver string, params config.DatabaseParams) (string, error) {
	normalized, err := NormalizeDriver(driver)
	if err != nil {
		return "", err
	}
	if dsn := strings.TrimSpace(params.DSN); dsn != "" {
		return dsn, nil
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return "", fmt.Errorf("database name is required")
	}
	host := strings.TrimSpace(params.Host)
	if host == "" {
		host = "localhost"
	}

	switch normalized {
	case constants.DriverMySQL:
		port := params.Port
		if port <= 0 {
			port = 3306
		}
		charset := strings.TrimSpace(params.Charset)
		if charset == "" {
			charset = "utf8mb4"
		}
		mc := mysqldriver.NewConfig()
		mc.User = params.Username
		mc.Passwd = params.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		mc.DBName = name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": charset}
		return mc.FormatDSN(), nil
	case constants.DriverPostgres:
		port := params.Port
		if port <= 0 || port == 3306 {
			port = 5432
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(host, strconv.Itoa(port)),
			Path:     "/" + name,
			RawQuery: url.Values{"sslmode": {"disable"}, "TimeZone": {"UTC"}}.Encode(),
		}
		if params.Username != "" || params.Password != "" {
			u.User = url.UserPassword(params.Username, params.Password)
		}
		return u.String(), nil
	default:
		return sqliteDSN(name), nil
	}
}

// sqliteDSN 打开外键约束，保证删除用户时级联删除页面
func sqliteDSN(name string) string {
	if strings.Contains(name, "_pragma=foreign_keys") {
		return name
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_pragma=foreign_keys(1)"
}

// OpenDB 打开数据库连接，不主动探活：库不可达时服务照常启动，请求再返回错误
func OpenDB(opts OpenOptions) (*gorm.DB, error) {
	driver, err := NormalizeDriver(opts.Driver)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case constants.DriverMySQL:
		dialector = mysql.New(mysql.Config{
			DSN:                       opts.DSN,
			SkipInitializeWithVersion: true,
			DefaultStringSize:         255,
		})
	case constants.DriverPostgres:
		dialector = postgres.New(postgres.Config{DSN: opts.DSN})
	default:
		dsn := sqliteDSN(opts.DSN)
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	}

	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		DisableAutomaticPing: true,
		TranslateError:       true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	applyDBPool(sqlDB, opts.Pool)
	return db, nil
}

// Ping 在超时内探测数据库连通性
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureSQLiteDir(dsn string) error {
	path := dsn
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	path = strings.TrimPrefix(path, "file:")
	if path == "" || strings.Contains(dsn, "mode=memory") || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite dir failed: %w", err)
	}
	return nil
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}
