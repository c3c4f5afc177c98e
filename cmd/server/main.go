package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"github.com/sublimes-drive/drive-core/config"
	"github.com/sublimes-drive/drive-core/internal/api/handler"
	"github.com/sublimes-drive/drive-core/internal/api/router"
	"github.com/sublimes-drive/drive-core/internal/billing"
	"github.com/sublimes-drive/drive-core/internal/freya"
	"github.com/sublimes-drive/drive-core/internal/repository"
	"github.com/sublimes-drive/drive-core/internal/service"
	"github.com/sublimes-drive/drive-core/pkg/cache"
	"github.com/sublimes-drive/drive-core/pkg/database"
	"github.com/sublimes-drive/drive-core/pkg/logger"
)

// @title Sublimes Drive API
// @version 1.0
// @description 车友社区互动 / Freya 助手 / 支付会话
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTrace := initTracing(cfg)
	defer shutdownTrace()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}

	rdb, err := cache.InitRedis(cfg)
	if err != nil {
		logger.Error("redis init failed", zap.Error(err))
		os.Exit(1)
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	freyaRepo := repository.NewFreyaRepository(db)
	orderRepo := repository.NewSingleDBOrderRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	authSvc := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.ExpireHour)
	interactions := service.NewInteractionService(db, cfg.Freya.AgentID)
	publisher := service.NewPublisher(db)

	activityLog := service.NewActivityLogger(freyaRepo, 0)
	stopActivity := activityLog.Start(2)
	defer stopActivity(context.Background())

	checkout := billing.NewCheckoutService(orderRepo, billingRepo, billing.NewStripeProvider(cfg.Stripe.SecretKey))

	freyaCfg := freya.Config{
		Enabled:        cfg.Freya.Enabled,
		AgentID:        cfg.Freya.AgentID,
		AgentName:      cfg.Freya.AgentName,
		BrandWhitelist: strings.Split(cfg.Freya.BrandWhitelist, ","),
		DailyTokenCap:  cfg.Freya.DailyTokenCap,
		SearchResults:  cfg.Search.MaxResults,
	}
	var generator freya.Generator
	if cfg.Freya.APIKey != "" {
		generator, err = freya.NewOpenAIGenerator(cfg.Freya.APIKey, cfg.Freya.BaseURL, cfg.Freya.ModelText, cfg.Freya.ModelVision)
		if err != nil {
			logger.Error("generator init failed", zap.Error(err))
			os.Exit(1)
		}
	} else {
		logger.Warn("freya api key missing, assistant disabled")
		freyaCfg.Enabled = false
	}
	guard := freya.NewRedisGuard(rdb, cfg.Freya.AgentID, cfg.Freya.MaxPerMinute, cfg.Freya.MaxPerHour, cfg.Freya.MaxPerDay)
	dispatcher := freya.NewDispatcher(
		freyaCfg,
		postRepo, commentRepo, freyaRepo,
		interactions,
		generator,
		freya.NewHTTPSearchClient(cfg.Search.Endpoint, cfg.Search.APIKey),
		guard,
		activityLog,
	)

	worker := service.NewDispatchWorker(db, dispatcher, cfg.Freya.DispatchWorkers, 0, 0)
	stopWorker := worker.Start()
	defer stopWorker(context.Background())

	var annotator *freya.Annotator
	if cfg.Storage.Endpoint != "" {
		store, err := freya.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			logger.Error("object storage init failed", zap.Error(err))
			os.Exit(1)
		}
		annotator = freya.NewAnnotator(store, freyaRepo)
	} else {
		logger.Warn("storage endpoint missing, image annotation disabled")
	}

	h := handler.New(authSvc, interactions, publisher, postRepo, checkout, freyaRepo, annotator, cfg.Freya.AgentID)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.New(cfg, h),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// initTracing 配置 OTLP 上报，未配置 endpoint 时为空操作
func initTracing(cfg *config.Config) func() {
	if cfg.Trace.Endpoint == "" {
		return func() {}
	}
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.Trace.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("trace exporter init failed", zap.Error(err))
		return func() {}
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("drive-core"),
		)),
	)
	otel.SetTracerProvider(tp)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
}
