package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/classdesk/diary-api/internal/handler"
	"github.com/classdesk/diary-api/internal/middleware"
	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/repository"
	"github.com/classdesk/diary-api/internal/service"
	"github.com/classdesk/diary-api/internal/store"
	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
	"github.com/classdesk/diary-api/pkg/logger"
	corsmiddleware "github.com/classdesk/diary-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classdesk/diary-api/pkg/middleware/requestid"
)

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

	layout := store.Layout{DataDir: cfg.Storage.DataDir}
	if err := layout.EnsureBaseDirs(); err != nil {
		logr.Sugar().Fatalw("failed to prepare data directory", "error", err)
	}

	accountsDB, err := database.Open(layout.AccountsPath(), cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to open account directory", "error", err)
	}
	defer accountsDB.Close()

	accounts := repository.NewAccountRepository(accountsDB)
	if err := accounts.EnsureSchema(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to migrate account directory", "error", err)
	}

	registry, err := store.LoadClassRegistry(layout.ClassesPath())
	if err != nil {
		logr.Sugar().Fatalw("failed to load class registry", "error", err)
	}

	validate := validator.New()
	stores := store.NewStores(layout, cfg.Storage)

	metricsSvc := service.NewMetricsService()
	syncSvc := service.NewSyncService(stores, logr, metricsSvc)
	classSvc := service.NewClassService(registry, stores, syncSvc, validate, logr)
	enrollSvc := service.NewEnrollmentService(stores, accounts, validate, logr)
	userSvc := service.NewUserService(stores, accounts, enrollSvc, classSvc, validate, logr)
	diarySvc := service.NewDiaryService(stores, accounts, validate, logr)
	authSvc := service.NewAuthService(accounts, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	bundleSvc := service.NewBundleService(stores, accounts, logr, metricsSvc)
	fileSvc := service.NewFileService(layout, validate, logr)

	classHandler := handler.NewClassHandler(classSvc)
	userHandler := handler.NewUserHandler(userSvc)
	diaryHandler := handler.NewDiaryHandler(diarySvc)
	authHandler := handler.NewAuthHandler(authSvc, bundleSvc)
	fileHandler := handler.NewFileHandler(fileSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.POST("/login", authHandler.Login)
	r.POST("/process", authHandler.Process)
	r.GET("/classes", classHandler.List)
	r.GET("/day_view", diaryHandler.DayView)
	r.GET("/marks", diaryHandler.Marks)

	// Administrative routes. Token enforcement is off by default to stay
	// compatible with the legacy desktop client, which never sends one.
	admin := r.Group("/")
	staff := r.Group("/")
	if cfg.Auth.Required {
		admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
		staff.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	}

	admin.POST("/add_class", classHandler.Create)
	admin.POST("/add_user", userHandler.Add)
	admin.POST("/time_table_add", classHandler.AssignLesson)

	staff.POST("/homework_add", diaryHandler.SetHomework)
	staff.POST("/mark_add", diaryHandler.SetMark)
	staff.POST("/update_file", fileHandler.Update)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "data_dir", cfg.Storage.DataDir)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
