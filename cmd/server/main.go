package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-converter/internal/config"
	"github.com/garyjia/invoice-converter/internal/conversion"
	"github.com/garyjia/invoice-converter/internal/document"
	httpapi "github.com/garyjia/invoice-converter/internal/interfaces/http"
	"github.com/garyjia/invoice-converter/internal/invoice"
	"github.com/garyjia/invoice-converter/internal/notify"
	"github.com/garyjia/invoice-converter/internal/render"
	"github.com/garyjia/invoice-converter/internal/repository"
	"github.com/garyjia/invoice-converter/internal/storage"
	"github.com/garyjia/invoice-converter/internal/worker"
	"github.com/garyjia/invoice-converter/migrations"
	"github.com/garyjia/invoice-converter/pkg/database"
	"github.com/garyjia/invoice-converter/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "invoice-converter",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice converter",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create database directory", zap.Error(err))
	}
	db, err := database.New(ctx, database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if cfg.Database.MigrationsDir != "" {
		err = migrator.RunMigrationsDir(ctx, cfg.Database.MigrationsDir)
	} else {
		err = migrator.RunMigrations(ctx, migrations.FS)
	}
	if err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	clock, err := newClock(cfg.Extractor.FixedDate)
	if err != nil {
		logger.Fatal("Invalid extractor configuration", zap.Error(err))
	}

	notifier, err := newNotifier(cfg.Notify, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	files := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)

	service := conversion.NewService(conversion.Dependencies{
		Reader:    document.NewPDFTextReader(logger),
		Storage:   files,
		Journal:   repository.NewConversionRepository(db.DB, logger),
		Notifier:  notifier,
		Extractor: invoice.NewExtractor(clock, logger),
	}, conversion.Options{
		DefaultFormat: cfg.Render.DefaultFormat,
		KeepUploads:   cfg.Storage.KeepUploads,
		Render: render.Options{
			ExcelTemplate: cfg.Render.ExcelTemplate,
			Title:         cfg.Render.Title,
		},
	}, logger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}, service, logger)

	workers := worker.NewManager(logger)
	if cfg.Storage.OutputRetention > 0 {
		workers.Register(worker.NewOutputSweeper(files.OutputDir(),
			cfg.Storage.OutputRetention, cfg.Storage.SweepInterval, logger))
	}
	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}

	err = server.Start(ctx)
	workers.StopAll()
	if err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// newClock pins the invoice date when fixedDate is set.
func newClock(fixedDate string) (invoice.Clock, error) {
	if fixedDate == "" {
		return invoice.SystemClock{}, nil
	}
	date, err := time.Parse(invoice.DateLayout, fixedDate)
	if err != nil {
		return nil, fmt.Errorf("fixed_date %q: %w", fixedDate, err)
	}
	return invoice.FixedClock(date), nil
}

func newNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notify.Notifier, error) {
	if !cfg.Enabled {
		return notify.NopNotifier{}, nil
	}
	return notify.NewLarkNotifier(notify.LarkConfig{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		ReceiveIDType: cfg.ReceiveIDType,
		ReceiveID:     cfg.ReceiveID,
	}, logger)
}
