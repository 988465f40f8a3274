package provider

import (
	"context"
	"errors"
	"time"

	"github.com/textpages-admin/internal/authz"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/redisclient"
	"github.com/textpages-admin/internal/repository"
	"github.com/textpages-admin/internal/service"

	"gorm.io/gorm"
)

// ErrDatabaseUnavailable 启动时未能连接业务数据库
var ErrDatabaseUnavailable = errors.New("database unavailable")

// Container 依赖注入容器
// DB 为 nil 时只有初始化相关接口可用。
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redisclient.Client

	Codec  *credential.Codec
	Hasher *credential.PasswordHasher

	// Repositories
	AdminRepo     repository.AdminRepository
	UserRepo      repository.UserRepository
	PageRepo      repository.PageRepository
	SettingRepo   repository.SettingRepository
	DashboardRepo repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	UserService         *service.UserService
	PageService         *service.PageService
	DashboardService    *service.DashboardService
	SettingService      *service.SettingService
	ProvisioningService *service.ProvisioningService
}

// NewContainer 初始化容器；reload 由应用层提供，用于 reload_config 动作
func NewContainer(cfg *config.Config, db *gorm.DB, reload func() bool) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	codec, err := credential.NewCodec(cfg.JWT.SecretKey)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisclient.New(&cfg.Redis),
		Codec:  codec,
		Hasher: credential.NewPasswordHasher(cfg.Security.PasswordPepper),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(reload); err != nil {
		return nil, err
	}

	return c, nil
}

// HasDatabase 业务数据库是否可用
func (c *Container) HasDatabase() bool {
	return c != nil && c.DB != nil
}

// SetupPending 首次初始化尚未完成：数据库不可用、管理员表不存在或没有管理员
func (c *Container) SetupPending(ctx context.Context) bool {
	if !c.HasDatabase() {
		return true
	}
	if !c.DB.WithContext(ctx).Migrator().HasTable(&models.AdminUser{}) {
		return true
	}
	count, err := c.AdminRepo.Count(ctx)
	if err != nil {
		logger.Warnw("provider_setup_check_failed", "error", err)
		return false
	}
	return count == 0
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		return
	}
	c.AdminRepo = repository.NewAdminRepository(c.DB)
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.PageRepo = repository.NewPageRepository(c.DB)
	c.SettingRepo = repository.NewSettingRepository(c.DB)
	c.DashboardRepo = repository.NewDashboardRepository(c.DB)
}

func (c *Container) initServices(reload func() bool) error {
	authzService, err := c.newAuthzService()
	if err != nil {
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Security.LoginCaptcha, c.Config.Captcha)
	c.ProvisioningService = service.NewProvisioningService(c.Config, c.Hasher, reload)
	// 令牌校验不依赖数据库，登录需要
	ttl := time.Duration(c.Config.JWT.ExpireHours) * time.Hour
	c.AuthService = service.NewAuthService(c.AdminRepo, c.Codec, c.Hasher, ttl)
	if c.DB == nil {
		return nil
	}

	c.UserService = service.NewUserService(c.UserRepo, c.Hasher, c.Config.Pagination)
	c.PageService = service.NewPageService(c.PageRepo, c.UserRepo, c.Config.Pagination)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo)
	return nil
}

// 数据库不可用或策略表无法创建时退化为内存策略
func (c *Container) newAuthzService() (*authz.Service, error) {
	if c.DB != nil {
		authzService, err := authz.NewService(c.DB)
		if err == nil {
			return authzService, nil
		}
		logger.Warnw("provider_init_authz_failed", "error", err, "fallback", "memory")
	}
	return authz.NewMemoryService()
}

// Close 释放数据库与 Redis 连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.DB != nil {
		if err := models.Close(c.DB); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
