package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadSize)
	assert.Equal(t, "data/conversions.db", cfg.Database.Path)
	assert.Equal(t, "xlsx", cfg.Render.DefaultFormat)
	assert.Equal(t, 24*time.Hour, cfg.Storage.OutputRetention)
	assert.Equal(t, 15*time.Minute, cfg.Storage.SweepInterval)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Notify.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  path: /var/lib/converter/journal.db
  migrations_dir: migrations
storage:
  base_dir: /var/lib/converter/files
  keep_uploads: true
  output_retention: 0s
render:
  default_format: pdf
  title: PROFORMA INVOICE
extractor:
  fixed_date: "2026-01-31"
logger:
  level: debug
  format: console
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/converter/journal.db", cfg.Database.Path)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.True(t, cfg.Storage.KeepUploads)
	assert.Zero(t, cfg.Storage.OutputRetention)
	assert.Equal(t, "pdf", cfg.Render.DefaultFormat)
	assert.Equal(t, "PROFORMA INVOICE", cfg.Render.Title)
	assert.Equal(t, "2026-01-31", cfg.Extractor.FixedDate)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LARK_APP_ID", "cli_env")
	t.Setenv("LARK_APP_SECRET", "secret_env")
	t.Setenv("LARK_RECEIVE_ID", "oc_env")

	cfg, err := Load(writeConfig(t, "notify:\n  enabled: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "cli_env", cfg.Notify.AppID)
	assert.Equal(t, "secret_env", cfg.Notify.AppSecret)
	assert.Equal(t, "oc_env", cfg.Notify.ReceiveID)
	assert.Equal(t, "chat_id", cfg.Notify.ReceiveIDType)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "render:\n  default_format: docx\n"))
	assert.ErrorContains(t, err, "render.default_format")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "db"},
			Storage:  StorageConfig{BaseDir: "files"},
			Render:   RenderConfig{DefaultFormat: "xlsx"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no database", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"no storage", func(c *Config) { c.Storage.BaseDir = "" }, "storage.base_dir"},
		{"negative retention", func(c *Config) { c.Storage.OutputRetention = -time.Hour }, "storage.output_retention"},
		{"retention without interval", func(c *Config) { c.Storage.OutputRetention = time.Hour }, "storage.sweep_interval"},
		{"missing template", func(c *Config) { c.Render.ExcelTemplate = "/nope/template.xlsx" }, "render.excel_template"},
		{"bad fixed date", func(c *Config) { c.Extractor.FixedDate = "31/01/2026" }, "extractor.fixed_date"},
		{"notify without credentials", func(c *Config) { c.Notify.Enabled = true }, "notify.app_id"},
		{"notify without receiver", func(c *Config) {
			c.Notify = NotifyConfig{Enabled: true, AppID: "a", AppSecret: "b"}
		}, "notify.receive_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
