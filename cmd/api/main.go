package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bravoform/bravoform-api/api/swagger"
	"github.com/bravoform/bravoform-api/internal/handler"
	"github.com/bravoform/bravoform-api/internal/middleware"
	"github.com/bravoform/bravoform-api/internal/repository"
	"github.com/bravoform/bravoform-api/internal/service"
	"github.com/bravoform/bravoform-api/pkg/cache"
	"github.com/bravoform/bravoform-api/pkg/config"
	"github.com/bravoform/bravoform-api/pkg/database"
	"github.com/bravoform/bravoform-api/pkg/events"
	"github.com/bravoform/bravoform-api/pkg/logger"
	corsmiddleware "github.com/bravoform/bravoform-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bravoform/bravoform-api/pkg/middleware/requestid"
)

// @title BravoForm API
// @version 1.0.0
// @description Form building and data collection service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := time.LoadLocation(cfg.Forms.Timezone)
	if err != nil {
		logr.Sugar().Warnw("invalid timezone, falling back to UTC", "timezone", cfg.Forms.Timezone)
		location = time.UTC
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	bus := events.NewBus(logr)
	defer bus.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	formRepo := repository.NewFormRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	collaboratorRepo := repository.NewCollaboratorRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	formSvc := service.NewFormService(formRepo, companyRepo, responseRepo, cacheSvc, bus, validate, logr, location)
	responseSvc := service.NewResponseService(responseRepo, formSvc, collaboratorRepo, cacheSvc, bus, validate, logr, location)
	companySvc := service.NewCompanyService(companyRepo, validate, logr)
	collaboratorSvc := service.NewCollaboratorService(collaboratorRepo, companyRepo, validate, logr)

	dashboardHandler := handler.NewDashboardHandler(nil)
	if cfg.Dashboard.Enabled {
		dashboardHandler = handler.NewDashboardHandler(service.NewDashboardService(formRepo, responseRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr, location))
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(responseRepo, formSvc, cfg.Exports.MaxRows, logr, location)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc := service.NewNotificationService(service.NotificationConfig{
		Enabled:    cfg.Notifications.Enabled,
		WebhookURL: cfg.Notifications.WebhookURL,
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, logr)
	notificationSvc.Start(ctx, bus)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Forms:         handler.NewFormHandler(formSvc),
		Responses:     handler.NewResponseHandler(responseSvc, exportSvc),
		Dashboard:     dashboardHandler,
		Companies:     handler.NewCompanyHandler(companySvc),
		Collaborators: handler.NewCollaboratorHandler(collaboratorSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}, middleware.JWT(authSvc))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
