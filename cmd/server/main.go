package main

import (
	"DataSentinel/internal/blobstore"
	"DataSentinel/internal/config"
	"DataSentinel/internal/handlers"
	"DataSentinel/internal/middleware"
	"DataSentinel/internal/notify"
	"DataSentinel/internal/repo"
	"DataSentinel/internal/risk"
	"DataSentinel/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	middleware.SetTokenTTL(cfg.TokenTTL)
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	stores := repo.NewStores(gormDB)

	// содержимое файлов: MinIO при наличии endpoint, иначе таблица blobs
	var blobs blobstore.Store = blobstore.NewDBStore(stores.Blobs)
	if cfg.UseMinio() {
		ms, err := blobstore.NewMinioStore(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return err
		}
		blobs = ms
	}

	policy, err := risk.LoadPolicy(cfg.RiskPolicyFile)
	if err != nil {
		return err
	}
	holder := risk.NewHolder(policy)

	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(stores.Notifications, hub, cfg.WebhookURLs, cfg.NotifyQueue, sugar)
	defer dispatcher.Close()

	svc := service.New(stores, service.Options{
		Blobs:          blobs,
		Notifier:       dispatcher,
		Policy:         holder,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		WatermarkTTL:   cfg.WatermarkTTL,
		Logger:         sugar,
	})

	if cfg.AdminLogin != "" && cfg.AdminPassword != "" {
		admin, err := svc.Users.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
		if err != nil {
			return err
		}
		sugar.Infow("Admin account ready", "login", admin.Login, "user_id", admin.ID)
	}

	h := handlers.NewHandler(svc, hub, sugar, cfg)
	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server", "addr", cfg.BaseURL)
	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"Minio", cfg.UseMinio(),
		"RiskPolicyFile", cfg.RiskPolicyFile,
		"Webhooks", len(cfg.WebhookURLs),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sugar.Infow("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.RiskPolicyFile != "" {
		reloader, err := risk.NewReloader(holder, cfg.RiskPolicyFile, sugar)
		if err != nil {
			sugar.Warnw("Risk policy hot reload disabled", "error", err)
		} else {
			g.Go(func() error { return reloader.Run(gctx) })
		}
	}

	return g.Wait()
}
