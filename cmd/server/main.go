package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	httpadapter "cv-generator/internal/adapter/http"
	repo "cv-generator/internal/adapter/repository"
	"cv-generator/internal/config"
	"cv-generator/internal/infrastructure/migration"
	"cv-generator/internal/render"
	"cv-generator/internal/usecase"
	infra "cv-generator/pkg/infrastructure"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := infra.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	templatesStorage, closeStorage, err := openTemplatesStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	sessCfg := session.Config{
		Expiration:   cfg.Session.Expiration,
		KeyLookup:    "cookie:" + cfg.Session.CookieName,
		KeyGenerator: uuid.NewString,
	}
	if cfg.Storage.RedisURL != "" {
		client, err := infra.NewRedisClient(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		rs := repo.NewRedisSessionStorage(client)
		defer rs.Close()
		sessCfg.Storage = rs
		log.Info("sessions stored in redis")
	}
	sessions := session.New(sessCfg)

	docRenderer, err := render.New(render.Options{
		Language:     cfg.CV.Language,
		Verbatim:     cfg.CV.HTMLVerbatim,
		TemplatesDir: cfg.CV.TemplatesDir,
	})
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	gen := usecase.NewGenerator(
		docRenderer,
		infra.NewChromedpRenderer(cfg.PDF.ChromePath, cfg.PDF.Timeout),
		usecase.GeneratorOptions{Attempts: cfg.PDF.Attempts, Backoff: cfg.PDF.Backoff},
		log,
	)

	h := httpadapter.NewHandler(sessions, usecase.NewTemplateStore(templatesStorage, log), gen, httpadapter.Options{
		MaxItemsPerSection: cfg.CV.MaxItemsPerSection,
		ExportPrefix:       cfg.CV.ExportPrefix,
		MaxUploadBytes:     cfg.CV.MaxUploadBytes,
	}, log)
	app := httpadapter.NewApp(h, cfg.CV.MaxUploadBytes)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr()), zap.String("templates_backend", cfg.Storage.TemplatesBackend))
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}

func openTemplatesStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (repo.Storage, func(), error) {
	switch cfg.Storage.TemplatesBackend {
	case config.BackendPostgres:
		pool, err := infra.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo.NewPostgresStorage(pool), pool.Close, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		s, err := repo.NewSQLStorage(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, closer(s, log), nil
	default:
		s, err := repo.NewFileStorage(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func closer(c io.Closer, log *zap.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("close storage", zap.Error(err))
		}
	}
}
