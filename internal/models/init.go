package models

import (
	"strconv"

	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/logger"

	"gorm.io/gorm"
)

// DefaultAdmin 建表后写入的默认管理员（密码已哈希）
type DefaultAdmin struct {
	Username     string
	Email        string
	PasswordHash string
	Password     string // 仅用于日志提示是否仍为默认口令
}

// DefaultSystemSettings 首次建表写入的系统设置
func DefaultSystemSettings() []SystemSetting {
	return []SystemSetting{
		{Key: constants.SettingSMTPHost, Value: "", Description: "SMTP server host"},
		{Key: constants.SettingSMTPPort, Value: strconv.Itoa(587), Description: "SMTP server port"},
		{Key: constants.SettingSMTPUsername, Value: "", Description: "SMTP username"},
		{Key: constants.SettingSMTPPassword, Value: "", Description: "SMTP password"},
		{Key: constants.SettingSMTPEncryption, Value: "tls", Description: "SMTP encryption (tls/ssl)"},
		{Key: constants.SettingSiteURL, Value: "https://yourdomain.com", Description: "Site URL"},
		{Key: constants.SettingAdminEmail, Value: "admin@yourdomain.com", Description: "Administrator email"},
	}
}

// InitDefaultAdmin 管理员表为空时创建默认管理员，返回是否创建
func InitDefaultAdmin(db *gorm.DB, admin DefaultAdmin) (bool, error) {
	var count int64
	if err := db.Model(&AdminUser{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	row := AdminUser{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: admin.PasswordHash,
		Role:         constants.AdminRoleAdmin,
	}
	if err := db.Create(&row).Error; err != nil {
		return false, err
	}

	if admin.Password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", admin.Username)
		logger.Warnw("default_admin_password_change_required", "username", admin.Username)
	} else {
		logger.Warnw("default_admin_created", "username", admin.Username, "password_hidden", true)
	}
	return true, nil
}

// InitDefaultSettings 系统设置表为空时写入默认值，返回写入条数
func InitDefaultSettings(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&SystemSetting{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	rows := DefaultSystemSettings()
	if err := db.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
