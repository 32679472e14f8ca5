package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"picboard/pkg/config"
	"picboard/pkg/logger"
	"picboard/pkg/middleware"
	"picboard/pkg/queue"
	"picboard/pkg/s3"
	"picboard/pkg/upload"
	submissionHTTP "picboard/services/submission/internal/controller/http"
	"picboard/services/submission/internal/form"
	"picboard/services/submission/internal/repo/cache"
	"picboard/services/submission/internal/repo/persistent"
	"picboard/services/submission/internal/usecase"
	"picboard/services/submission/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "picboard/services/submission/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	// Initialize repositories
	submissionRepo := persistent.NewSubmissionRepository(db)

	var listCache usecase.ListCache
	if redisClient != nil {
		listCache = cache.NewSubmissionCache(redisClient, cfg.ListCacheTTL)
	}

	var events usecase.EventPublisher
	if queueClient != nil {
		events = queueClient
	}

	// Initialize use cases
	uploader := upload.New(s3Client,
		upload.WithConcurrency(cfg.UploadConcurrency),
		upload.WithLogger(log),
	)
	policy := upload.Policy{MaxFileSize: cfg.UploadMaxFileSize(), MaxFiles: cfg.UploadMaxFiles}
	submissionUseCase := usecase.NewSubmissionUseCase(submissionRepo, uploader, cfg.S3BucketName, policy, listCache, events, log)

	r := NewRouter(cfg, log, submissionUseCase, redisClient, prometheus.NewRegistry())

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Submission service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down submission service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server first so in-flight submits can finish
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Submission service exited")
}

// NewRouter builds the page, the JSON API and the operational endpoints.
// redisClient may be nil, which disables rate limiting.
func NewRouter(cfg *config.Config, log *logger.Logger, submissionUseCase usecase.SubmissionUseCase, redisClient *redis.Client, reg *prometheus.Registry) *gin.Engine {
	previews := form.NewPreviewStore()
	sessions := form.NewSessions(cfg.SessionMax, cfg.SessionTTL, func() *form.Form {
		return form.New(submissionUseCase, previews, log)
	})

	pageHandler := submissionHTTP.NewPageHandler(sessions, previews, cfg.SessionTTL, cfg.UploadMaxFiles, log)
	submissionHandler := submissionHTTP.NewSubmissionHandler(submissionUseCase, cfg.UploadMaxFiles, log)

	reg.MustRegister(collectors.NewGoCollector())
	metrics := middleware.NewMetrics(reg)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())
	r.SetHTMLTemplate(web.Templates())

	bodyLimit := middleware.UploadBodyLimitMiddleware(cfg.UploadMaxBodySize())
	rateLimit := middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// HTML form
	r.GET("/", pageHandler.Index)
	r.POST("/draft", rateLimit, bodyLimit, pageHandler.UpdateDraft)
	r.POST("/submit", rateLimit, bodyLimit, pageHandler.Submit)
	r.GET("/previews/:id", pageHandler.Preview)

	api := r.Group("/api/v1")
	// CORS applies to the JSON API only, the page is same-origin
	api.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	{
		api.POST("/submissions", rateLimit, bodyLimit, submissionHandler.CreateSubmission)
		api.GET("/submissions", submissionHandler.ListSubmissions)
		api.OPTIONS("/submissions", func(c *gin.Context) {})
	}

	return r
}
