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
	"go.uber.org/zap"

	_ "github.com/noah-isme/uniops-api/api/swagger"
	"github.com/noah-isme/uniops-api/internal/handler"
	"github.com/noah-isme/uniops-api/internal/middleware"
	"github.com/noah-isme/uniops-api/internal/repository"
	"github.com/noah-isme/uniops-api/internal/service"
	"github.com/noah-isme/uniops-api/pkg/cache"
	"github.com/noah-isme/uniops-api/pkg/config"
	"github.com/noah-isme/uniops-api/pkg/database"
	"github.com/noah-isme/uniops-api/pkg/jobs"
	"github.com/noah-isme/uniops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uniops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uniops-api/pkg/middleware/requestid"
)

// @title UniOps API
// @version 0.1.0
// @description University operations backend: timetable generation and term scheduling
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it session views are served straight from
	// the database.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, view caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	roomRepo := repository.NewRoomRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	programRepo := repository.NewProgramRepository(db)
	termRepo := repository.NewTermRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	timetableSvc := service.NewTimetableService(
		roomRepo,
		periodRepo,
		sectionRepo,
		programRepo,
		termRepo,
		templateRepo,
		sessionRepo,
		db,
		cacheRepo,
		metricsSvc,
		validate,
		logr,
		service.TimetableServiceConfig{
			DefaultWeekCount: cfg.Timetable.DefaultWeekCount,
			MaxWeekCount:     cfg.Timetable.MaxWeekCount,
			Seed:             cfg.Timetable.Seed,
			CacheTTL:         cfg.Timetable.CacheTTL,
		},
	)

	generationQueue := jobs.NewQueue("timetable", timetableSvc.RunGenerationJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Timetable.QueueBufferSize,
		Logger:     logr,
	})
	timetableSvc.AttachQueue(generationQueue)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	exportSvc := service.NewExportService(timetableSvc, roomRepo, periodRepo, validate, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		timetable := api.Group("/timetable")
		{
			timetable.GET("/template", timetableHandler.Template)
			timetable.GET("/sessions", timetableHandler.Sessions)
			timetable.GET("/sessions/week", timetableHandler.SessionsWeek)
			timetable.GET("/sessions/by-term-code", timetableHandler.SessionsByTermCode)
			if cfg.Exports.Enabled {
				timetable.GET("/export/week", exportHandler.ExportWeek)
			}

			protected := timetable.Group("")
			protected.Use(middleware.JWT(authSvc))
			{
				protected.POST("/template/generate", timetableHandler.GenerateTemplate)
				protected.POST("/generate", timetableHandler.GenerateTerm)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generationQueue.Start(ctx)
	defer generationQueue.Stop()

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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
