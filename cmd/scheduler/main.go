package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/siddharth786s1/Project-Intelligencia-Scheduler/api/swagger"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/catalogue"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/handler"
	internalmiddleware "github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/middleware"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/cache"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/config"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/logger"
	corsmiddleware "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/middleware/requestid"
)

// @title Intelligencia Scheduling Engine
// @version 1.0.0
// @description Multi-tenant timetable generation engine for the Intelligencia platform
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// redis is optional; without it generation reads always hit the catalogue
	var cacheStore *cache.Store
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, generation cache disabled", "error", err)
		cacheStore = cache.NewStore(nil, logr)
	} else {
		cacheStore = cache.NewStore(redisClient, logr)
	}
	defer cacheStore.Close() //nolint:errcheck

	catalogueClient := catalogue.NewClient(cfg.Catalogue, logr)
	metricsService := service.NewMetricsService()
	tokenService := service.NewTokenService(cfg.JWT.Secret)
	normalizer := service.NewNormalizer(catalogueClient, logr)
	schedulerService := service.NewSchedulerService(normalizer, catalogueClient, cfg, metricsService, logr)
	generationService := service.NewGenerationService(catalogueClient, cacheStore, cfg.Cache.GenerationTTL, metricsService, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedulerService.Start(rootCtx)
	defer schedulerService.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsService))

	schedulerHandler := handler.NewSchedulerHandler(schedulerService)
	generationHandler := handler.NewGenerationHandler(generationService)
	metricsHandler := handler.NewMetricsHandler(metricsService, schedulerService)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenService))
	{
		adminOnly := internalmiddleware.RBAC(models.RoleAdmin, models.RoleSuperAdmin)

		scheduler := api.Group("/scheduler")
		scheduler.POST("/jobs", adminOnly, schedulerHandler.Submit)
		scheduler.GET("/jobs/:job_id", schedulerHandler.Status)
		scheduler.DELETE("/jobs/:job_id", adminOnly, schedulerHandler.Cancel)
		scheduler.GET("/queue", schedulerHandler.Queue)

		scheduler.GET("/generations", generationHandler.List)
		scheduler.GET("/generations/:generation_id", generationHandler.Get)
		scheduler.GET("/generations/:generation_id/export", generationHandler.Export)
		scheduler.DELETE("/generations/:generation_id", adminOnly, generationHandler.Delete)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down, draining scheduler queue")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown error", "error", err)
	}
}
