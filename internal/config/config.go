package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Render    RenderConfig    `mapstructure:"render"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

// DatabaseConfig holds database configuration. An empty MigrationsDir uses the
// migrations compiled into the binary.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StorageConfig holds the working directory for uploads and rendered documents.
// A zero OutputRetention keeps rendered documents forever.
type StorageConfig struct {
	BaseDir         string        `mapstructure:"base_dir"`
	KeepUploads     bool          `mapstructure:"keep_uploads"`
	OutputRetention time.Duration `mapstructure:"output_retention"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// RenderConfig holds document rendering configuration
type RenderConfig struct {
	DefaultFormat string `mapstructure:"default_format"`
	ExcelTemplate string `mapstructure:"excel_template"`
	Title         string `mapstructure:"title"`
}

// ExtractorConfig holds extraction configuration
type ExtractorConfig struct {
	// FixedDate pins the invoice date (YYYY-MM-DD); empty uses today.
	FixedDate string `mapstructure:"fixed_date"`
}

// NotifyConfig holds Lark notification configuration
type NotifyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AppID         string `mapstructure:"app_id"`
	AppSecret     string `mapstructure:"app_secret"`
	ReceiveIDType string `mapstructure:"receive_id_type"`
	ReceiveID     string `mapstructure:"receive_id"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads the YAML file at configPath, then overlays variables from a .env
// file next to the working directory and the process environment.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv sets variables from path that are not already in the environment.
// A missing file is ignored.
func loadDotEnv(path string) error {
	err := gotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_upload_size", 20<<20)

	v.SetDefault("database.path", "data/conversions.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)
	v.SetDefault("database.migrations_dir", "")

	v.SetDefault("storage.base_dir", "data/files")
	v.SetDefault("storage.keep_uploads", false)
	v.SetDefault("storage.output_retention", 24*time.Hour)
	v.SetDefault("storage.sweep_interval", 15*time.Minute)

	v.SetDefault("render.default_format", "xlsx")
	v.SetDefault("render.title", "TAX INVOICE")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.receive_id_type", "chat_id")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("notify.app_id", "LARK_APP_ID")
	_ = v.BindEnv("notify.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("notify.receive_id", "LARK_RECEIVE_ID")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("server.port", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	if c.Storage.OutputRetention < 0 {
		return fmt.Errorf("storage.output_retention cannot be negative")
	}
	if c.Storage.OutputRetention > 0 && c.Storage.SweepInterval <= 0 {
		return fmt.Errorf("storage.sweep_interval must be positive when output_retention is set")
	}

	switch strings.ToLower(c.Render.DefaultFormat) {
	case "xlsx", "pdf":
	default:
		return fmt.Errorf("render.default_format must be xlsx or pdf, got %q", c.Render.DefaultFormat)
	}

	if c.Render.ExcelTemplate != "" {
		if _, err := os.Stat(c.Render.ExcelTemplate); err != nil {
			return fmt.Errorf("render.excel_template: %w", err)
		}
	}

	if c.Extractor.FixedDate != "" {
		if _, err := time.Parse("2006-01-02", c.Extractor.FixedDate); err != nil {
			return fmt.Errorf("extractor.fixed_date must be YYYY-MM-DD: %w", err)
		}
	}

	if c.Notify.Enabled {
		if c.Notify.AppID == "" || c.Notify.AppSecret == "" {
			return fmt.Errorf("notify.app_id and notify.app_secret are required when notify is enabled")
		}
		if c.Notify.ReceiveID == "" {
			return fmt.Errorf("notify.receive_id is required when notify is enabled")
		}
	}

	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
