package service

import "errors"

// 错误文本即返回给调用方的提示信息
var (
	ErrInvalidCredentials   = errors.New("Invalid username or password")
	ErrAdminNotFound        = errors.New("Admin not found")
	ErrCaptchaRequired      = errors.New("Captcha is required")
	ErrCaptchaInvalid       = errors.New("Invalid captcha")
	ErrTooManyLoginAttempts = errors.New("Too many login attempts")

	ErrUserIDRequired   = errors.New("User ID is required")
	ErrEmailRequired    = errors.New("Email is required")
	ErrInvalidEmail     = errors.New("Invalid email format")
	ErrEmailExists      = errors.New("User with this email already exists")
	ErrInvalidStatus    = errors.New("Invalid status")
	ErrUserNotFound     = errors.New("User not found")
	ErrNoFieldsToUpdate = errors.New("No fields to update")

	ErrPageIDRequired     = errors.New("Page ID is required")
	ErrPageFieldsRequired = errors.New("User ID and title are required")
	ErrPageOwnerNotFound  = errors.New("User does not exist")
	ErrPageNotFound       = errors.New("Page not found")

	ErrDatabaseParamsRequired = errors.New("Database name is required")
	ErrUnsupportedDriver      = errors.New("Unsupported database driver")
	ErrConnectionFailed       = errors.New("Connection failed")
	ErrConfigWriteFailed      = errors.New("Failed to write configuration file")
	ErrSettingKeyRequired     = errors.New("Setting key is required")
	ErrSettingNotFound        = errors.New("Setting not found")
	ErrReloadUnavailable      = errors.New("Reload is not available")
)
