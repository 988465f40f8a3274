package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/provider"
	"github.com/textpages-admin/internal/router"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startupPingTimeout = 5 * time.Second

// OpenDatabase 按当前环境打开业务数据库并探测连通性
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dsn, err := models.BuildDSN(cfg.Database.Driver, cfg.ActiveDatabase())
	if err != nil {
		return nil, err
	}
	db, err := models.OpenDB(models.OpenOptions{
		Driver: cfg.Database.Driver,
		DSN:    dsn,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
		Debug: cfg.App.IsDevelopment(),
	})
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := models.Ping(pingCtx, db); err != nil {
		_ = models.Close(db)
		return nil, err
	}
	return db, nil
}

// BuildRunner 构建服务运行器；数据库不可用时仍启动，只开放初始化接口
func BuildRunner(ctx context.Context, cfg *config.Config, reload func() bool, log *zap.SugaredLogger) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		log.Errorw("database_unavailable",
			"driver", cfg.Database.Driver,
			"env", cfg.App.Env,
			"error", err,
			"hint", "use the settings endpoint to provision a database",
		)
		db = nil
	}

	container, err := provider.NewContainer(cfg, db, reload)
	if err != nil {
		if db != nil {
			_ = models.Close(db)
		}
		return nil, nil, err
	}
	if container.Redis != nil {
		if err := container.Redis.Ping(ctx); err != nil {
			log.Warnw("redis_unavailable", "error", err)
		}
	}

	engine := router.SetupRouter(cfg, container)
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	return NewRunner(NewHTTPService(addr, engine)), container, nil
}

// Run 应用启动入口；收到重载请求时停止服务、重新读取配置并重建
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	reloads := make(chan struct{}, 1)
	requestReload := func() bool {
		select {
		case reloads <- struct{}{}:
		default:
		}
		return true
	}
	if len(opts.ReloadSignals) > 0 {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, opts.ReloadSignals...)
		defer signal.Stop(sigCh)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case sig := <-sigCh:
					opts.Logger.Infow("reload_signal_received", "signal", sig.String())
					requestReload()
				}
			}
		}()
	}

	cfg := opts.Config
	for {
		runner, container, err := BuildRunner(ctx, cfg, requestReload, opts.Logger)
		if err != nil {
			return err
		}
		opts.Logger.Infow("app_start",
			"addr", cfg.Server.Host+":"+cfg.Server.Port,
			"env", cfg.App.Env,
			"driver", cfg.Database.Driver,
			"database", container.HasDatabase(),
		)

		runCtx, stop := context.WithCancel(ctx)
		var reloading atomic.Bool
		done := make(chan struct{})
		go func() {
			select {
			case <-reloads:
				reloading.Store(true)
				stop()
			case <-done:
			}
		}()

		runErr := runner.Run(runCtx, opts.ShutdownTimeout, opts.Logger)
		close(done)
		stop()
		if err := container.Close(); err != nil {
			opts.Logger.Warnw("container_close_failed", "error", err)
		}

		if runErr != nil {
			return runErr
		}
		if ctx.Err() != nil || !reloading.Load() {
			return nil
		}

		next, err := config.LoadFile(cfg.File)
		if err != nil {
			opts.Logger.Errorw("config_reload_failed", "file", cfg.File, "error", err)
		} else {
			cfg = next
		}
		opts.Logger.Infow("app_reloading", "file", cfg.File)
	}
}
