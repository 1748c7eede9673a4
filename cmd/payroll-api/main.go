package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sahana-institute/payroll-api/api/swagger"
	"github.com/sahana-institute/payroll-api/internal/handler"
	"github.com/sahana-institute/payroll-api/internal/middleware"
	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
	"github.com/sahana-institute/payroll-api/internal/service"
	"github.com/sahana-institute/payroll-api/pkg/cache"
	"github.com/sahana-institute/payroll-api/pkg/config"
	"github.com/sahana-institute/payroll-api/pkg/database"
	"github.com/sahana-institute/payroll-api/pkg/logger"
	corsmiddleware "github.com/sahana-institute/payroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sahana-institute/payroll-api/pkg/middleware/requestid"
)

// @title Institute Payroll API
// @version 1.0.0
// @description Monthly salary computation and payroll administration for a tutoring institute
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

	validate := validator.New()
	metrics := service.NewMetricsService()

	var (
		db           *sqlx.DB
		cacheService *service.CacheService
		demoStore    *repository.MemStore
	)

	if cfg.Demo.Enabled {
		demoStore = repository.NewMemStore()
		demoStore.SeedDemo(time.Now().UTC())
		logr.Info("demo mode enabled, using seeded in-memory store")
	} else {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()

		if cfg.Payroll.CacheEnabled {
			redisClient, err := cache.NewRedis(cfg.Redis)
			if err != nil {
				logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			} else {
				cacheRepo := repository.NewCacheRepository(redisClient, logr)
				cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Payroll.CacheTTL, logr, true)
			}
		}
	}

	payrollCfg := service.PayrollServiceConfig{
		CacheTTL:          cfg.Payroll.CacheTTL,
		WorkerConcurrency: cfg.Payroll.WorkerConcurrency,
	}

	var (
		payrollService *service.PayrollService
		authService    *service.AuthService
		userService    *service.UserService
	)

	authCfg := service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "payroll-api",
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	if cfg.Demo.Enabled {
		// Demo mode serves the salary read path without auth or Postgres.
		payrollService = service.NewPayrollService(service.PayrollServiceParams{
			Teachers:    demoStore,
			Collections: demoStore.Collections(),
			Deductions:  demoStore.Deductions(),
			Metrics:     metrics,
			Logger:      logr,
			Config:      payrollCfg,
		})
		exportService := service.NewExportService(payrollService, logr)
		dashboardService := service.NewDashboardService(payrollService, logr)

		salaryHandler := handler.NewSalaryHandler(payrollService, exportService)
		dashboardHandler := handler.NewDashboardHandler(dashboardService)

		api.GET("/salary", salaryHandler.Monthly)
		api.GET("/salary/export", salaryHandler.Export)
		api.GET("/salary/:teacherId", salaryHandler.ByTeacher)
		api.GET("/dashboard", dashboardHandler.Admin)
	} else {
		userRepo := repository.NewUserRepository(db)
		teacherRepo := repository.NewTeacherRepository(db)
		classRepo := repository.NewClassRepository(db)
		rateRepo := repository.NewRateRepository(db)
		collectionRepo := repository.NewCollectionRepository(db)
		deductionRepo := repository.NewDeductionRepository(db)
		runRepo := repository.NewPayrollRunRepository(db)

		authService = service.NewAuthService(userRepo, validate, logr, authCfg)
		userService = service.NewUserService(userRepo, teacherRepo, validate, logr)
		payrollService = service.NewPayrollService(service.PayrollServiceParams{
			Teachers:    teacherRepo,
			Collections: collectionRepo,
			Deductions:  deductionRepo,
			Runs:        runRepo,
			Cache:       cacheService,
			Metrics:     metrics,
			Logger:      logr,
			Config:      payrollCfg,
		})
		teacherService := service.NewTeacherService(teacherRepo, validate, logr)
		classService := service.NewClassService(classRepo, payrollService, validate, logr)
		rateService := service.NewRateService(rateRepo, teacherRepo, classRepo, validate, logr)
		collectionService := service.NewCollectionService(service.CollectionServiceParams{
			Repo:      collectionRepo,
			Teachers:  teacherRepo,
			Classes:   classRepo,
			Payroll:   payrollService,
			Audit:     userRepo,
			Validator: validate,
			Logger:    logr,
		})
		deductionService := service.NewDeductionService(service.DeductionServiceParams{
			Repo:      deductionRepo,
			Teachers:  teacherRepo,
			Payroll:   payrollService,
			Audit:     userRepo,
			Validator: validate,
			Logger:    logr,
		})
		exportService := service.NewExportService(payrollService, logr)
		dashboardService := service.NewDashboardService(payrollService, logr)

		authHandler := handler.NewAuthHandler(authService)
		userHandler := handler.NewUserHandler(userService)
		teacherHandler := handler.NewTeacherHandler(teacherService)
		classHandler := handler.NewClassHandler(classService)
		rateHandler := handler.NewRateHandler(rateService)
		collectionHandler := handler.NewCollectionHandler(collectionService)
		deductionHandler := handler.NewDeductionHandler(deductionService)
		salaryHandler := handler.NewSalaryHandler(payrollService, exportService)
		dashboardHandler := handler.NewDashboardHandler(dashboardService)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
			auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
			auth.GET("/me", middleware.JWT(authService), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authService))

		adminOrStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
		adminOnly := middleware.RequireRoles(models.RoleAdmin)

		teachers := protected.Group("/teachers")
		{
			teachers.GET("", adminOrStaff, teacherHandler.List)
			teachers.POST("", adminOrStaff, teacherHandler.Create)
			teachers.GET("/:teacherId", middleware.RBAC("ADMIN", "STAFF", "SELF"), teacherHandler.Get)
			teachers.PUT("/:teacherId", adminOrStaff, teacherHandler.Update)
			teachers.DELETE("/:teacherId", adminOnly, teacherHandler.Delete)
			teachers.GET("/:teacherId/rates", adminOrStaff, rateHandler.ListByTeacher)
			teachers.GET("/:teacherId/deductions", adminOrStaff, deductionHandler.ListByTeacher)
			teachers.DELETE("/:teacherId/deductions/:id", adminOrStaff, deductionHandler.Delete)
		}

		classes := protected.Group("/classes", adminOrStaff)
		{
			classes.GET("", classHandler.List)
			classes.GET("/:id", classHandler.Get)
			classes.POST("", classHandler.Create)
			classes.PUT("/:id", classHandler.Update)
			classes.DELETE("/:id", classHandler.Delete)
		}

		collections := protected.Group("/collections", adminOrStaff)
		{
			collections.GET("", collectionHandler.List)
			collections.POST("", collectionHandler.Create)
			collections.PUT("/:id", collectionHandler.Update)
			collections.DELETE("/:id", collectionHandler.Delete)
		}

		protected.GET("/deductions", adminOrStaff, deductionHandler.List)
		protected.POST("/deductions", adminOrStaff, deductionHandler.Create)
		protected.POST("/rates", adminOrStaff, rateHandler.Upsert)
		protected.DELETE("/rates/:id", adminOrStaff, rateHandler.Delete)

		salary := protected.Group("/salary")
		{
			salary.GET("", adminOrStaff, salaryHandler.Monthly)
			salary.GET("/export", adminOrStaff, salaryHandler.Export)
			salary.GET("/:teacherId", middleware.RBAC("ADMIN", "STAFF", "SELF"), salaryHandler.ByTeacher)
		}

		runs := protected.Group("/payroll-runs", adminOnly)
		{
			runs.POST("", middleware.Audit(userRepo, models.AuditActionPayrollFinalized, "payroll_runs"), salaryHandler.Finalize)
			runs.GET("", salaryHandler.Runs)
			runs.GET("/:id", salaryHandler.Run)
		}

		protected.GET("/dashboard", adminOrStaff, dashboardHandler.Admin)

		users := protected.Group("/users", adminOnly)
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "demo", cfg.Demo.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
	logr.Info("server stopped")
}
