package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusworks/registrar-api/api/swagger"
	"github.com/campusworks/registrar-api/internal/handler"
	"github.com/campusworks/registrar-api/internal/middleware"
	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/repository"
	"github.com/campusworks/registrar-api/internal/service"
	"github.com/campusworks/registrar-api/pkg/cache"
	"github.com/campusworks/registrar-api/pkg/config"
	"github.com/campusworks/registrar-api/pkg/database"
	"github.com/campusworks/registrar-api/pkg/logger"
	corsmiddleware "github.com/campusworks/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusworks/registrar-api/pkg/middleware/requestid"
)

// @title Registrar API
// @version 1.0.0
// @description University records service: registration, provisioning, grading
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

	credDB, err := database.NewPostgres(cfg.CredentialsDB)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect credentials store", "error", err)
	}
	defer credDB.Close()

	acadDB, err := database.NewPostgres(cfg.AcademicDB)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect academic store", "error", err)
	}
	defer acadDB.Close()

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	// Credentials store repositories.
	userRepo := repository.NewUserRepository(credDB)

	// Academic store repositories.
	courseRepo := repository.NewCourseRepository(acadDB)
	sectionRepo := repository.NewSectionRepository(acadDB)
	studentRepo := repository.NewStudentRepository(acadDB)
	instructorRepo := repository.NewInstructorRepository(acadDB)
	enrollmentRepo := repository.NewEnrollmentRepository(acadDB)
	gradeRepo := repository.NewGradeRepository(acadDB)
	settingsRepo := repository.NewSettingsRepository(acadDB)

	provisioningRepo := repository.NewProvisioningRepository(credDB, acadDB)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	settingsSvc := service.NewSettingsService(settingsRepo, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	provisioningSvc := service.NewProvisioningService(provisioningRepo, userRepo, studentRepo, instructorRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, settingsSvc, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, settingsSvc, nil, logr)
	catalogSvc := service.NewCatalogService(courseRepo, sectionRepo, instructorRepo, cacheRepo, cfg.Catalog.CacheTTL, nil, logr)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(provisioningSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, metricsSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)

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
		if err := credDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "credentials store unreachable"})
			return
		}
		if err := acadDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "academic store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", userHandler.Create)
		admin.GET("/provisioning/orphans", userHandler.Orphans)
		admin.GET("/settings/maintenance", settingsHandler.GetMaintenance)
		admin.PUT("/settings/maintenance", settingsHandler.SetMaintenance)
	}

	catalog := api.Group("", middleware.JWT(authSvc))
	{
		catalog.GET("/courses", catalogHandler.ListCourses)
		catalog.POST("/courses", middleware.RequireRoles(models.RoleAdmin), catalogHandler.CreateCourse)
		catalog.GET("/courses/:id/sections", catalogHandler.ListSections)
		catalog.POST("/sections", middleware.RequireRoles(models.RoleAdmin), catalogHandler.CreateSection)
		catalog.GET("/sections/:id", catalogHandler.GetSection)
		catalog.GET("/instructors", catalogHandler.ListInstructors)
	}

	enrollments := api.Group("/enrollments", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleStudent))
	{
		enrollments.POST("", enrollmentHandler.Register)
		enrollments.DELETE("", enrollmentHandler.Drop)
	}

	grades := api.Group("/grades", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor))
	{
		grades.PUT("", gradeHandler.RecordScores)
	}

	students := api.Group("/students", middleware.JWT(authSvc), middleware.RBAC(string(models.RoleAdmin), string(models.RoleInstructor), "SELF"))
	{
		students.GET("/:id/enrollments", enrollmentHandler.ListByStudent)
		students.GET("/:id/transcript", gradeHandler.Transcript)
		students.GET("/:id/transcript/export", gradeHandler.ExportTranscript)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
