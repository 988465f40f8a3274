package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// SaveDatabase 把连接参数写入配置文件的每个环境，其余配置保持不变
func SaveDatabase(file, driver string, params DatabaseParams, envs ...string) error {
	file = strings.TrimSpace(file)
	if file == "" {
		file = DefaultConfigFile
	}
	if len(envs) == 0 {
		envs = []string{EnvDevelopment, EnvProduction}
	}

	v := viper.New()
	v.SetConfigFile(file)
	if ext := strings.TrimPrefix(filepath.Ext(file), "."); ext == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if driver = strings.ToLower(strings.TrimSpace(driver)); driver != "" {
		v.Set("database.driver", driver)
	}
	for _, env := range envs {
		prefix := "database.environments." + strings.ToLower(strings.TrimSpace(env)) + "."
		v.Set(prefix+"host", params.Host)
		v.Set(prefix+"port", params.Port)
		v.Set(prefix+"name", params.Name)
		v.Set(prefix+"username", params.Username)
		v.Set(prefix+"password", params.Password)
		v.Set(prefix+"charset", params.Charset)
		v.Set(prefix+"dsn", params.DSN)
	}

	if dir := filepath.Dir(file); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
