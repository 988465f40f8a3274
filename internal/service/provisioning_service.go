package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/models"

	"gorm.io/gorm"
)

const defaultConnectTimeout = 5 * time.Second

// DatabaseInput 前端提交的候选连接参数
type DatabaseInput struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Charset  string `json:"charset"`
	DSN      string `json:"dsn"`
}

// Params 转换为配置文件中的连接参数
func (in DatabaseInput) Params() config.DatabaseParams {
	return config.DatabaseParams{
		Host:     strings.TrimSpace(in.Host),
		Port:     in.Port,
		Name:     strings.TrimSpace(in.Database),
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
		Charset:  strings.TrimSpace(in.Charset),
		DSN:      strings.TrimSpace(in.DSN),
	}
}

// ConnectionReport 连接测试结果
type ConnectionReport struct {
	Driver    string `json:"driver"`
	Database  string `json:"database"`
	LatencyMS int64  `json:"latencyMs"`
}

// ProvisionReport 建表结果，只列出本次实际创建或写入的对象
type ProvisionReport struct {
	Created []string `json:"created"`
}

// SaveConfigReport 保存配置结果
type SaveConfigReport struct {
	File           string `json:"file"`
	Driver         string `json:"driver"`
	ReloadRequired bool   `json:"reloadRequired"`
}

// ProvisioningService 数据库连接测试、建表与配置持久化
type ProvisioningService struct {
	cfg     *config.Config
	hasher  *credential.PasswordHasher
	timeout time.Duration
	reload  func() bool
}

// NewProvisioningService 创建初始化服务；reload 为空时不支持在线重载
func NewProvisioningService(cfg *config.Config, hasher *credential.PasswordHasher, reload func() bool) *ProvisioningService {
	return &ProvisioningService{
		cfg:     cfg,
		hasher:  hasher,
		timeout: defaultConnectTimeout,
		reload:  reload,
	}
}

// TestConnection 打开连接并执行 SELECT 1，不写入任何内容
func (s *ProvisioningService) TestConnection(ctx context.Context, input DatabaseInput) (*ConnectionReport, error) {
	driver, err := s.resolveDriver(input.Driver)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	db, err := s.open(ctx, driver, input.Params())
	if err != nil {
		return nil, err
	}
	defer closeQuietly(db)

	return &ConnectionReport{
		Driver:    driver,
		Database:  strings.TrimSpace(input.Database),
		LatencyMS: time.Since(started).Milliseconds(),
	}, nil
}

// CreateTables 幂等建表，并在表为空时写入默认管理员与默认设置
func (s *ProvisioningService) CreateTables(ctx context.Context, input DatabaseInput) (*ProvisionReport, error) {
	driver, err := s.resolveDriver(input.Driver)
	if err != nil {
		return nil, err
	}
	db, err := s.open(ctx, driver, input.Params())
	if err != nil {
		return nil, err
	}
	defer closeQuietly(db)

	return s.provision(db.WithContext(ctx))
}

func (s *ProvisioningService) provision(db *gorm.DB) (*ProvisionReport, error) {
	created, err := models.EnsureTables(db)
	if err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	report := &ProvisionReport{Created: created}

	prov := s.cfg.Provisioning
	hash, err := s.hasher.Hash(prov.DefaultAdminPassword)
	if err != nil {
		return nil, err
	}
	adminCreated, err := models.InitDefaultAdmin(db, models.DefaultAdmin{
		Username:     prov.DefaultAdminUsername,
		Email:        prov.DefaultAdminEmail,
		PasswordHash: hash,
		Password:     prov.DefaultAdminPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if adminCreated {
		report.Created = append(report.Created, "admin_users (default admin)")
	}

	seeded, err := models.InitDefaultSettings(db)
	if err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	if seeded > 0 {
		report.Created = append(report.Created, fmt.Sprintf("system_settings (%d default settings)", seeded))
	}

	logger.Infow("provisioning_completed", "created", report.Created)
	return report, nil
}

// SaveConfig 重新验证连接后把参数写入配置文件，需重载后生效
func (s *ProvisioningService) SaveConfig(ctx context.Context, input DatabaseInput) (*SaveConfigReport, error) {
	driver, err := s.resolveDriver(input.Driver)
	if err != nil {
		return nil, err
	}
	if _, err := s.TestConnection(ctx, input); err != nil {
		return nil, err
	}

	file := s.cfg.File
	if err := config.SaveDatabase(file, driver, input.Params()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if strings.TrimSpace(file) == "" {
		file = config.DefaultConfigFile
	}
	logger.Infow("database_config_saved", "file", file, "driver", driver)
	return &SaveConfigReport{File: file, Driver: driver, ReloadRequired: true}, nil
}

// RequestReload 请求进程重新读取配置并重建服务
func (s *ProvisioningService) RequestReload() error {
	if s.reload == nil || !s.reload() {
		return ErrReloadUnavailable
	}
	return nil
}

func (s *ProvisioningService) resolveDriver(driver string) (string, error) {
	if strings.TrimSpace(driver) == "" {
		driver = s.cfg.Database.Driver
	}
	normalized, err := models.NormalizeDriver(driver)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	return normalized, nil
}

func (s *ProvisioningService) open(ctx context.Context, driver string, params config.DatabaseParams) (*gorm.DB, error) {
	dsn, err := models.BuildDSN(driver, params)
	if err != nil {
		return nil, ErrDatabaseParamsRequired
	}
	db, err := models.OpenDB(models.OpenOptions{Driver: driver, DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := models.Ping(pingCtx, db); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	var one int
	if err := db.WithContext(pingCtx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return db, nil
}

func closeQuietly(db *gorm.DB) {
	if err := models.Close(db); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnw("provisioning_close_db_failed", "error", err)
	}
}
