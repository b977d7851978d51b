package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/speechcare/clinic-api/internal/analysis"
	"github.com/speechcare/clinic-api/internal/artifact"
	"github.com/speechcare/clinic-api/internal/config"
	reportHandler "github.com/speechcare/clinic-api/internal/handler/report"
	"github.com/speechcare/clinic-api/internal/middleware"
	"github.com/speechcare/clinic-api/internal/pdf"
	"github.com/speechcare/clinic-api/internal/repository/cache"
	"github.com/speechcare/clinic-api/internal/repository/postgres"
	"github.com/speechcare/clinic-api/internal/router"
	"github.com/speechcare/clinic-api/internal/service/notify"
	reportService "github.com/speechcare/clinic-api/internal/service/report"
	"github.com/speechcare/clinic-api/pkg/auth"
	"github.com/speechcare/clinic-api/pkg/logger"
	"github.com/speechcare/clinic-api/pkg/messaging"
	"github.com/speechcare/clinic-api/pkg/messaging/redis"
	"github.com/speechcare/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize artifact store")
	}

	m := metrics.NewMetrics("clinic", "api")

	// Repositories
	reportRepo := postgres.NewReportRepository(db)
	userRepo := cache.NewUserRepository(postgres.NewUserRepository(db), cfg.Cache.UserTTL)

	// Analysis pipeline
	engine := analysis.NewSubprocessEngine(cfg.Engine, zl, m)
	generator := pdf.NewGenerator(store, zl)

	// Optional collaborators
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(cfg.Redis.Config, zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}
	notifier := notify.NewService(cfg.SMTP, zl)

	reportSvc := reportService.NewService(reportRepo, userRepo, engine, generator, store, broker, notifier, zl, m)

	// HTTP surface
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	reportH := reportHandler.NewHandler(reportSvc)

	r := router.NewRouter(authMiddleware, reportH, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORS:           middleware.DefaultCORSConfig(),
		MetricsPrefix:  "clinic",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
