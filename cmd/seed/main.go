package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/textpages-admin/internal/app"
	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/logger"
	"github.com/textpages-admin/internal/models"
	"github.com/textpages-admin/internal/repository"
	"github.com/textpages-admin/internal/service"
)

func main() {
	var (
		configFile   string
		userCount    int
		pagesPerUser int
	)
	flag.StringVar(&configFile, "config", "", "配置文件路径")
	flag.IntVar(&userCount, "users", 12, "演示用户数量")
	flag.IntVar(&pagesPerUser, "pages", 3, "每个用户的演示页面数量")
	flag.Parse()

	cfg := config.Load(configFile)
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()
	ctx := context.Background()

	// 连接数据库
	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatalw("seed_database_unavailable", "error", err)
	}
	defer func() { _ = models.Close(db) }()

	// 建表与默认数据
	created, err := models.EnsureTables(db)
	if err != nil {
		log.Fatalw("seed_ensure_tables_failed", "error", err)
	}
	log.Infow("seed_tables", "created", created)

	hasher := credential.NewPasswordHasher(cfg.Security.PasswordPepper)
	hash, err := hasher.Hash(cfg.Provisioning.DefaultAdminPassword)
	if err != nil {
		log.Fatalw("seed_hash_admin_password_failed", "error", err)
	}
	if _, err := models.InitDefaultAdmin(db, models.DefaultAdmin{
		Username:     cfg.Provisioning.DefaultAdminUsername,
		Email:        cfg.Provisioning.DefaultAdminEmail,
		PasswordHash: hash,
		Password:     cfg.Provisioning.DefaultAdminPassword,
	}); err != nil {
		log.Fatalw("seed_default_admin_failed", "error", err)
	}
	if _, err := models.InitDefaultSettings(db); err != nil {
		log.Fatalw("seed_default_settings_failed", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	users := service.NewUserService(userRepo, hasher, cfg.Pagination)
	pages := service.NewPageService(repository.NewPageRepository(db), userRepo, cfg.Pagination)

	createdUsers, createdPages := 0, 0
	for i := 1; i <= userCount; i++ {
		status := constants.UserStatuses[i%len(constants.UserStatuses)]
		email := fmt.Sprintf("demo%02d@example.com", i)
		user, err := users.Create(ctx, service.CreateUserInput{Email: email, Status: status})
		if errors.Is(err, service.ErrEmailExists) {
			log.Infow("seed_user_exists", "email", email)
			continue
		}
		if err != nil {
			log.Warnw("seed_user_failed", "email", email, "error", err)
			continue
		}
		createdUsers++

		for j := 1; j <= pagesPerUser; j++ {
			_, err := pages.Create(ctx, service.CreatePageInput{
				UserID:  user.ID,
				Title:   fmt.Sprintf("Demo page %d of %s", j, email),
				Content: fmt.Sprintf("Sample content #%d.\nEdit or delete me from the admin panel.", j),
			})
			if err != nil {
				log.Warnw("seed_page_failed", "user_id", user.ID, "error", err)
				continue
			}
			createdPages++
		}
	}

	log.Infow("seed_completed", "users", createdUsers, "pages", createdPages)
}
