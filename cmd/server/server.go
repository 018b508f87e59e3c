package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	"ProNetwork/config"
	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/handler"
	"ProNetwork/internal/middleware"
	"ProNetwork/internal/router"
	"ProNetwork/internal/service"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/metrics"
	"ProNetwork/pkg/otel"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/pkg/token"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if err := config.Validate(); err != nil {
		logger.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 链路追踪可选，未配置 OTLP_ENDPOINT 时不启用
	var serverOpts []hertzconfig.Option
	telemetry := config.Cfg.OTLPEndpoint != ""
	if telemetry {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: config.Cfg.ServiceVer,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
			SampleRatio:    config.Cfg.OTLPSampler,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
		}
	}

	infra, err := newInfra()
	if err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer infra.close(context.Background())

	if err := infra.store.SeedCatalog(ctx); err != nil {
		logger.Logger.Fatal("Failed to seed job catalog", zap.Error(err))
	}

	client, err := backend.New(backend.OptionsFromConfig())
	if err != nil {
		logger.Logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	jwtManager, err := token.FromConfig()
	if err != nil {
		logger.Logger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	auth, err := middleware.NewAuth(jwtManager)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize auth middleware", zap.Error(err))
	}

	key := []byte(config.Cfg.EncryptionKey)
	svc := service.New(service.Deps{
		Store:          infra.store,
		Backend:        client,
		Publisher:      infra.publisher,
		Wizards:        cache.NewWizardStore(infra.kv, key, time.Duration(config.Cfg.WizardTTLMinutes)*time.Minute),
		Locker:         cache.NewLocker(infra.kv),
		Tokens:         cache.NewTokenStore(infra.kv, key, jwtManager.RefreshTTL()),
		Profiles:       cache.NewProtectedCache[backend.User](infra.kv, "profile", time.Duration(config.Cfg.ProfileCacheSeconds)*time.Second),
		JWT:            jwtManager,
		NextID:         snowflake.NextID,
		WizardLockTTL:  time.Duration(config.Cfg.WizardLockSeconds) * time.Second,
		BackendTimeout: time.Duration(config.Cfg.BackendTimeoutSecs) * time.Second,
		EmailHashSalt:  config.Cfg.EmailHashSalt,
	})

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
		zap.String("storage", config.Cfg.StorageDriver),
		zap.String("backend", config.Cfg.BackendBaseURL),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	serverOpts = append(serverOpts, server.WithHostPorts(addr))

	var tracerMW app.HandlerFunc
	if telemetry {
		var tracerOpt hertzconfig.Option
		tracerOpt, tracerMW = middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracerOpt)
	}

	h := server.New(serverOpts...)
	if tracerMW != nil {
		h.Use(tracerMW)
	}

	opts := router.Options{
		Auth:          auth,
		SessionSecret: config.Cfg.SessionSecret,
		CSRFSecret:    config.Cfg.CSRFSecret,
		CSRFEnabled:   config.Cfg.CSRFEnabled,
		IsProduction:  config.Cfg.IsProduction(),
		Telemetry:     telemetry,
	}
	if config.Cfg.RateLimitEnabled {
		opts.Limiter = infra.limiter
	}
	router.Register(h, handler.New(svc), opts)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
