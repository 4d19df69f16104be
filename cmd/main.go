package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dtroode/confreg-server/internal/api/http/reqctx"
	"github.com/dtroode/confreg-server/internal/api/http/router"
	httpServer "github.com/dtroode/confreg-server/internal/api/http/server"
	"github.com/dtroode/confreg-server/internal/config"
	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/metrics"
	"github.com/dtroode/confreg-server/internal/model"
	"github.com/dtroode/confreg-server/internal/repository/memory"
	"github.com/dtroode/confreg-server/internal/repository/postgres"
	"github.com/dtroode/confreg-server/internal/repository/sqlite"
	"github.com/dtroode/confreg-server/internal/server"
	"github.com/dtroode/confreg-server/internal/service"
	storage "github.com/dtroode/confreg-server/internal/storage/minio"
	"github.com/dtroode/confreg-server/internal/token"
	"github.com/dtroode/confreg-server/internal/tracing"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	store, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer closeStore()

	tracer, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  cfg.Tracing.ServiceName,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	var receipts model.ReceiptStorage
	if cfg.Storage.Enabled {
		receipts, err = openReceipts(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to initialize receipt storage", "error", err)
		}
	}

	registrationService := service.NewRegistration(store, receipts, appMetrics, tracer.Tracer(), logger)
	queryService := service.NewQuery(store, appMetrics, tracer.Tracer(), logger)

	opts := []router.Option{router.WithAllowedOrigins(cfg.HTTP.AllowedOrigins)}
	if cfg.HTTP.AdminJWTSecret != "" {
		opts = append(opts, router.WithAdminAuth(token.NewJWT(cfg.HTTP.AdminJWTSecret)))
	} else {
		logger.Warn("admin endpoints are not authenticated; set HTTP_ADMIN_JWT_SECRET to protect them")
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, router.WithMetrics(appMetrics, registry))
	}

	r := router.New(registrationService, queryService, reqctx.NewManager(), logger, opts...)
	srv := httpServer.NewHTTPServer(r.Register(), cfg.HTTP.Address(), cfg.HTTP.ReadHeaderTimeout)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during tracer shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg config.Database, logger *logger.Logger) (model.RegistrationStore, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite record store", "path", cfg.SQLitePath)
		return sqlite.NewRegistrationRepository(db), func() { db.Close() }, nil
	case config.DriverMemory:
		logger.Warn("using in-memory record store; registrations are lost on restart")
		return memory.NewRegistrationRepository(), func() {}, nil
	default:
		db, err := postgres.NewConection(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRegistrationRepository(db), func() { db.Close() }, nil
	}
}

func openReceipts(ctx context.Context, cfg config.Storage) (*storage.Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return storage.NewClient(ctx, minioClient, cfg.Bucket)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
