package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/textpages-admin/internal/config"
	"github.com/textpages-admin/internal/constants"
	"github.com/textpages-admin/internal/credential"
	"github.com/textpages-admin/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestProvisioningService(t *testing.T, reload func() bool) (*ProvisioningService, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		File:     filepath.Join(t.TempDir(), "config.yml"),
		Database: config.DatabaseConfig{Driver: constants.DriverSQLite},
		Provisioning: config.ProvisioningConfig{
			DefaultAdminUsername: "admin",
			DefaultAdminPassword: "admin123",
			DefaultAdminEmail:    "admin@example.com",
		},
	}
	return NewProvisioningService(cfg, credential.NewPasswordHasher(""), reload), cfg
}

func TestProvisioningTestConnection(t *testing.T) {
	svc, _ := newTestProvisioningService(t, nil)
	ctx := context.Background()

	report, err := svc.TestConnection(ctx, DatabaseInput{Database: filepath.Join(t.TempDir(), "probe.db")})
	require.NoError(t, err)
	require.Equal(t, constants.DriverSQLite, report.Driver)

	_, err = svc.TestConnection(ctx, DatabaseInput{Driver: "oracle", Database: "x"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = svc.TestConnection(ctx, DatabaseInput{})
	require.ErrorIs(t, err, ErrDatabaseParamsRequired)

	_, err = svc.TestConnection(ctx, DatabaseInput{Driver: constants.DriverPostgres, Host: "127.0.0.1", Port: 1, Database: "none"})
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestProvisioningCreateTablesIsIdempotent(t *testing.T) {
	svc, _ := newTestProvisioningService(t, nil)
	ctx := context.Background()
	input := DatabaseInput{Driver: constants.DriverSQLite, Database: filepath.Join(t.TempDir(), "pages.db")}

	first, err := svc.CreateTables(ctx, input)
	require.NoError(t, err)
	require.Subset(t, first.Created, []string{"users", "user_pages", "admin_users", "system_settings", "admin_users (default admin)"})
	require.Len(t, first.Created, 6)

	second, err := svc.CreateTables(ctx, input)
	require.NoError(t, err)
	require.Empty(t, second.Created)

	dsn, err := models.BuildDSN(constants.DriverSQLite, input.Params())
	require.NoError(t, err)
	db, err := models.OpenDB(models.OpenOptions{Driver: constants.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer func() { _ = models.Close(db) }()

	var admins []models.AdminUser
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	require.Equal(t, constants.AdminRoleAdmin, admins[0].Role)
	require.True(t, credential.NewPasswordHasher("").Verify("admin123", admins[0].PasswordHash))

	var settings int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&settings).Error)
	require.EqualValues(t, len(models.DefaultSystemSettings()), settings)
}

func TestProvisioningSaveConfig(t *testing.T) {
	svc, cfg := newTestProvisioningService(t, nil)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "saved.db")

	report, err := svc.SaveConfig(ctx, DatabaseInput{Database: dbPath})
	require.NoError(t, err)
	require.True(t, report.ReloadRequired)
	require.Equal(t, cfg.File, report.File)

	loaded, err := config.LoadFile(cfg.File)
	require.NoError(t, err)
	require.Equal(t, constants.DriverSQLite, loaded.Database.Driver)
	require.Equal(t, dbPath, loaded.Database.Environments[config.EnvProduction].Name)
	require.Equal(t, dbPath, loaded.Database.Environments[config.EnvDevelopment].Name)

	_, err = svc.SaveConfig(ctx, DatabaseInput{Driver: constants.DriverPostgres, Host: "127.0.0.1", Port: 1, Database: "none"})
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestProvisioningRequestReload(t *testing.T) {
	svc, _ := newTestProvisioningService(t, nil)
	require.ErrorIs(t, svc.RequestReload(), ErrReloadUnavailable)

	called := 0
	svc, _ = newTestProvisioningService(t, func() bool { called++; return true })
	require.NoError(t, svc.RequestReload())
	require.Equal(t, 1, called)
}
