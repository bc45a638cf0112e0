package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/internal/admin"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/internal/auth"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/internal/complaints"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/internal/heatmap"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/internal/risk"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/cache"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/common"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/database"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/middleware"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/models"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/redis"
	_ "github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/validation"
)

const (
	serviceName = "safedata-api"
	version     = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting SafeData Intelligence API",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	// Run database migrations
	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations applied")

	// Initialize database
	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	// Initialize Redis-backed cache
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to redis")

	cacheManager := cache.NewManager(redisClient)

	// Load the risk classifier artifact. A missing model is not fatal:
	// predictions fall back to the density rules.
	classifier, err := risk.LoadClassifier(cfg.Classifier.ArtifactPath)
	if err != nil {
		logger.Warn("Failed to load risk classifier, using rule-based predictions",
			zap.String("path", cfg.Classifier.ArtifactPath),
			zap.Error(err),
		)
	} else if classifier != nil {
		logger.Info("Risk classifier loaded",
			zap.String("path", cfg.Classifier.ArtifactPath),
			zap.String("model_version", classifier.Version()),
		)
	}

	// Build repositories, services, and handlers
	authRepo := auth.NewRepository(db)
	mailer := auth.NewSMTPMailer(cfg.SMTP)
	authService := auth.NewService(authRepo, mailer, cfg.JWT, cfg.Server.BaseURL)
	authHandler := auth.NewHandler(authService)

	complaintsRepo := complaints.NewRepository(db)
	complaintsService := complaints.NewService(complaintsRepo, cacheManager)
	complaintsHandler := complaints.NewHandler(complaintsService)

	heatmapRepo := heatmap.NewRepository(db)
	heatmapService := heatmap.NewService(heatmapRepo, cacheManager, cfg.Map)
	heatmapHandler := heatmap.NewHandler(heatmapService)

	riskRepo := risk.NewRepository(db)
	riskService := risk.NewService(riskRepo, cacheManager, classifier, cfg.Risk)
	riskHandler := risk.NewHandler(riskService)

	adminRepo := admin.NewRepository(db)
	adminService := admin.NewService(adminRepo)
	adminHandler := admin.NewHandler(adminService)

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(30 * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.SanitizeRequest())
	router.Use(middleware.Metrics(serviceName))

	// Health checks
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/livez", common.LivenessProbe(serviceName, version))
	router.GET("/readyz", common.ReadinessProbe(serviceName, version, map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	}))
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware(cfg.JWT.Secret)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/reset-password", authHandler.ResetPassword)

			authGroup.POST("/logout", authRequired, authHandler.Logout)
			authGroup.GET("/me", authRequired, authHandler.GetProfile)
			authGroup.PUT("/me", authRequired, authHandler.UpdateProfile)
		}

		denuncias := api.Group("/denuncias", authRequired)
		{
			denuncias.POST("", complaintsHandler.Create)
			denuncias.GET("", complaintsHandler.List)
			denuncias.GET("/stats", complaintsHandler.GetStats)
			denuncias.POST("/upload-excel", complaintsHandler.UploadExcel)
			denuncias.GET("/:id", complaintsHandler.GetByID)
		}

		mapGroup := api.Group("/map", authRequired, middleware.RequireRole(models.MapRoles...))
		{
			mapGroup.GET("/filters", heatmapHandler.GetFilters)
			mapGroup.GET("/points", heatmapHandler.GetPoints)
			mapGroup.GET("/points.csv", heatmapHandler.DownloadPointsCSV)
			mapGroup.GET("/zones", heatmapHandler.GetZones)
		}

		riskGroup := api.Group("/risk", authRequired)
		{
			riskGroup.POST("/prediccion", riskHandler.Predecir)
			riskGroup.GET("/estadisticas/zona/:zona", riskHandler.GetZoneStats)
			riskGroup.GET("/zonas-riesgo", riskHandler.GetZonasRiesgo)
		}

		adminGroup := api.Group("/admin/users", authRequired, middleware.RequireRole(models.RoleGerente))
		{
			adminGroup.GET("", adminHandler.ListUsers)
			adminGroup.POST("", adminHandler.CreateUser)
			adminGroup.GET("/:id", adminHandler.GetUser)
			adminGroup.PUT("/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/:id", adminHandler.DeactivateUser)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
