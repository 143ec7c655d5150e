package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/studycubs/studycubs-api/api/swagger"
	"github.com/studycubs/studycubs-api/internal/handler"
	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/repository"
	"github.com/studycubs/studycubs-api/internal/service"
	"github.com/studycubs/studycubs-api/pkg/cache"
	"github.com/studycubs/studycubs-api/pkg/config"
	"github.com/studycubs/studycubs-api/pkg/database"
	"github.com/studycubs/studycubs-api/pkg/logger"
	corsmiddleware "github.com/studycubs/studycubs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studycubs/studycubs-api/pkg/middleware/requestid"
	"github.com/studycubs/studycubs-api/pkg/storage"
)

// @title StudyCubs API
// @version 1.0.0
// @description Tuition center management API: staff auth, batches, students, assignments, the student portal and franchise landing pages.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// Repositories.
	profileRepo := repository.NewProfileRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	franchiseRepo := repository.NewFranchiseRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Sessions.KeyPrefix, logr)

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)
	authService := service.NewAuthService(profileRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "studycubs-api",
	})
	batchService := service.NewBatchService(batchRepo, nil, logr)
	studentService := service.NewStudentService(studentRepo, batchRepo, nil, logr)
	credentialService := service.NewCredentialService(studentRepo, profileRepo, logr, service.CredentialConfig{
		PasswordLength: cfg.Credentials.PasswordLength,
		MaxAttempts:    cfg.Credentials.MaxAttempts,
	})
	studentAuthService := service.NewStudentAuthService(studentRepo, sessionRepo, profileRepo, logr)
	assignmentService := service.NewAssignmentService(assignmentRepo, batchRepo, nil, logr)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, logr)
	franchiseService := service.NewFranchiseService(franchiseRepo, nil, logr, service.FranchiseConfig{
		Enabled:   cfg.Franchise.Enabled,
		BrandName: cfg.Franchise.BrandName,
	})
	dashboardService := service.NewDashboardService(statsRepo, cacheService, logr, service.DashboardConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	exportService := service.NewExportService(studentRepo, exportStore, exportSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	batchHandler := handler.NewBatchHandler(batchService)
	studentHandler := handler.NewStudentHandler(studentService, credentialService, exportService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	portalHandler := handler.NewPortalHandler(studentAuthService, assignmentService, submissionService, metricsService)
	franchiseHandler := handler.NewFranchiseHandler(franchiseService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db, redisClient)
	exportHandler := handler.NewExportHandler(exportService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface: staff login, landing pages, signed export downloads.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/pages/:slug", middleware.OptionalJWT(authService), franchiseHandler.PublicPage)
	api.GET("/exports/:token", exportHandler.Download)

	// Student portal: opaque session in the X-Student-Session header.
	portal := api.Group("/portal")
	{
		portal.POST("/login", portalHandler.Login)
		portal.POST("/logout", portalHandler.Logout)

		authed := portal.Group("")
		authed.Use(middleware.StudentSession(studentAuthService))
		authed.GET("/me", portalHandler.Me)
		authed.GET("/assignments", portalHandler.Assignments)
		authed.POST("/submissions", portalHandler.Submit)
	}

	// Staff surface: everything below requires a valid access token.
	staff := api.Group("")
	staff.Use(middleware.JWT(authService))
	{
		staff.POST("/auth/logout", authHandler.Logout)
		staff.POST("/auth/change-password", authHandler.ChangePassword)
		staff.GET("/auth/me", authHandler.Me)

		staff.GET("/dashboard", dashboardHandler.Home)
		staff.GET("/dashboard/admin", middleware.DashboardGate(models.RoleSuperAdmin), dashboardHandler.Admin)
		staff.GET("/dashboard/teacher", middleware.DashboardGate(models.RoleTeacher), dashboardHandler.Teacher)
		staff.GET("/dashboard/franchise", middleware.DashboardGate(models.RoleFranchise), dashboardHandler.Franchise)

		teaching := staff.Group("")
		teaching.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleTeacher))
		{
			teaching.GET("/batches", batchHandler.List)
			teaching.POST("/batches", batchHandler.Create)
			teaching.GET("/batches/:id", batchHandler.Get)
			teaching.PUT("/batches/:id", batchHandler.Update)
			teaching.DELETE("/batches/:id", batchHandler.Delete)

			teaching.GET("/students", studentHandler.List)
			teaching.POST("/students", studentHandler.Create)
			teaching.GET("/students/export", studentHandler.Export)
			teaching.GET("/students/:id", studentHandler.Get)
			teaching.PUT("/students/:id", studentHandler.Update)
			teaching.DELETE("/students/:id", studentHandler.Delete)
			teaching.POST("/students/:id/credentials", studentHandler.GenerateCredentials)

			teaching.GET("/assignments", assignmentHandler.List)
			teaching.POST("/assignments", assignmentHandler.Create)
			teaching.GET("/assignments/:id", assignmentHandler.Get)
			teaching.PUT("/assignments/:id", assignmentHandler.Update)
			teaching.PATCH("/assignments/:id/publish", assignmentHandler.SetPublished)
			teaching.DELETE("/assignments/:id", assignmentHandler.Delete)

			teaching.GET("/submissions", submissionHandler.List)
			teaching.GET("/submissions/:id", submissionHandler.Get)
		}

		admin := staff.Group("/franchise")
		admin.Use(middleware.RequireRoles(models.RoleSuperAdmin))
		{
			admin.GET("/pages", franchiseHandler.List)
			admin.POST("/pages", middleware.Audit(profileRepo, "FRANCHISE_PAGE_CREATE", "franchise_pages"), franchiseHandler.Create)
			admin.GET("/pages/:id", franchiseHandler.Get)
			admin.PUT("/pages/:id", middleware.Audit(profileRepo, "FRANCHISE_PAGE_UPDATE", "franchise_pages"), franchiseHandler.Update)
			admin.DELETE("/pages/:id", middleware.Audit(profileRepo, "FRANCHISE_PAGE_DELETE", "franchise_pages"), franchiseHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
