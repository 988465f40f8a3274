package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/textpages-admin/internal/app"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiCyan  = "\033[36m"
	ansiDim   = "\033[2m"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "配置文件路径，默认按 ./config.yml、../config.yml、./etc/config.yml 查找")
	flag.Parse()

	printStartupBanner()

	// 加载配置
	cfg := config.Load(configFile)
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()

	if isWeakSecret(cfg.JWT.SecretKey) {
		if cfg.Server.Mode == "release" {
			log.Fatalw("jwt_secret_weak", "hint", "set a strong random jwt.secret (JWT_SECRET) before running in release mode")
		}
		log.Warnw("jwt_secret_weak", "hint", "replace jwt.secret before deploying")
	}
	if cfg.Security.AnonymousProvisioning {
		log.Warnw("anonymous_provisioning_enabled", "hint", "disable security.anonymous_provisioning once the database is provisioned")
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:        cfg,
		Logger:        log,
		Signals:       []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		ReloadSignals: []os.Signal{syscall.SIGHUP},
	}); err != nil {
		log.Fatalw("server_run_failed", "error", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + ansiBold + "textpages-admin" + ansiReset + ansiDim + "  admin API for text pages" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
