package app

import (
	"os"
	"time"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/logger"

	"go.uber.org/zap"
)

// Options 应用启动选项
type Options struct {
	Config  *config.Config
	Logger  *zap.SugaredLogger
	Signals []os.Signal
	// ReloadSignals 收到后重新读取配置并重建服务（通常为 SIGHUP）
	ReloadSignals   []os.Signal
	ShutdownTimeout time.Duration
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return opts
}
