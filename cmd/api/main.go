package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/config"
	"github.com/yourusername/quiz-engine/internal/handler"
	"github.com/yourusername/quiz-engine/internal/middleware"
	pgRepo "github.com/yourusername/quiz-engine/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-engine/internal/repository/redis"
	"github.com/yourusername/quiz-engine/internal/service"
	"github.com/yourusername/quiz-engine/internal/service/scoring"
	"github.com/yourusername/quiz-engine/pkg/auth"
	"github.com/yourusername/quiz-engine/pkg/database"
	"github.com/yourusername/quiz-engine/pkg/logger"
	"github.com/yourusername/quiz-engine/pkg/monitoring"
	"github.com/yourusername/quiz-engine/pkg/tracing"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Server, cfg.Log)
	defer logger.Sync()
	log := logger.Component("main")
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal("failed to init tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}
	monitoring.Init()

	// PostgreSQL + миграции (таблицы и хранимые функции подсчета)
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Server.IsDebug())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient, err := database.NewUniversalRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to Redis", zap.String("mode", cfg.Redis.Mode))

	// Репозитории
	bankRepo := pgRepo.NewQuizBankRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)
	gamificationRepo := pgRepo.NewGamificationRepo(db)
	routineRepo := pgRepo.NewRoutineRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Fatal("failed to initialize CacheRepo", zap.Error(err))
	}

	// Подсчет баллов: хранимая функция с локальным подсчетом в качестве запасного варианта
	scorer := scoring.NewFallbackScorer(
		scoring.NewRemoteScorer(routineRepo, attemptRepo),
		scoring.NewLocalScorer(bankRepo, questionRepo, responseRepo),
		scoring.Config{RemoteEnabled: cfg.Scoring.RemoteEnabled},
	)

	// Сервисы
	quizBankService := service.NewQuizBankService(bankRepo, questionRepo)
	attemptService := service.NewAttemptService(
		bankRepo, questionRepo, attemptRepo, responseRepo, cacheRepo,
		scorer, service.NewAwarder(gamificationRepo),
	)
	statisticsService := service.NewStatisticsService(
		bankRepo, questionRepo, attemptRepo, responseRepo, routineRepo, cacheRepo,
		service.StatisticsConfig{
			RoutineEnabled: cfg.Scoring.StatisticsRoutineEnabled,
			CacheTTL:       time.Duration(cfg.Cache.StatisticsTTLSec) * time.Second,
		},
	)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal("failed to create JWT service", zap.Error(err))
	}

	// Обработчики и middleware
	quizBankHandler := handler.NewQuizBankHandler(quizBankService)
	attemptHandler := handler.NewAttemptHandler(attemptService, quizBankService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), monitoring.MetricsMiddleware(), tracing.GinMiddleware())

	// В production не доверяем прокси-заголовкам, в разработке доверяем localhost
	trusted := []string{"127.0.0.1", "::1"}
	if !cfg.Server.IsDebug() {
		trusted = nil
	}
	if err := router.SetTrustedProxies(trusted); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{"status": "ok", "database": "ok", "redis": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"], status["status"], code = "unavailable", "degraded", http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			status["redis"], status["status"] = "unavailable", "degraded"
		}
		c.JSON(code, status)
	})
	router.GET("/metrics", monitoring.PrometheusHandler())

	apiLimit := rateLimiter.Limit(middleware.RateLimitConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		KeyPrefix:   "rl:api",
		LocalBurst:  cfg.RateLimit.LocalBurst,
	})

	api := router.Group("/api", apiLimit, authMiddleware.RequireAuth())
	instructor := authMiddleware.InstructorOnly()
	{
		api.POST("/quiz-banks", instructor, quizBankHandler.CreateQuizBank)
		api.GET("/courses/:courseId/quiz-banks", middleware.ExtractUintParam("courseId", "courseID"), quizBankHandler.GetQuizBanksByCourse)

		bank := api.Group("/quiz-banks/:id", middleware.ExtractUintParam("id", "quizBankID"))
		{
			bank.GET("", quizBankHandler.GetQuizBank)
			bank.POST("/attempts", attemptHandler.StartAttempt)
			bank.GET("/attempts/me", attemptHandler.ListMyAttempts)
			bank.GET("/progress/me", statisticsHandler.GetMyProgress)

			authored := bank.Group("", instructor)
			authored.PATCH("", quizBankHandler.UpdateQuizBank)
			authored.DELETE("", quizBankHandler.DeleteQuizBank)
			authored.PUT("/publish", quizBankHandler.TogglePublish)
			authored.POST("/duplicate", quizBankHandler.DuplicateQuizBank)
			authored.POST("/questions", quizBankHandler.CreateQuestion)
			authored.POST("/questions/import", quizBankHandler.ImportQuestions)
			authored.PUT("/questions/order", quizBankHandler.ReorderQuestions)
			authored.GET("/statistics", statisticsHandler.GetQuizStatistics)
			authored.GET("/export", statisticsHandler.ExportAttempts)
		}

		question := api.Group("/questions/:id", middleware.ExtractUintParam("id", "questionID"), instructor)
		{
			question.PATCH("", quizBankHandler.UpdateQuestion)
			question.DELETE("", quizBankHandler.DeleteQuestion)
			question.GET("/statistics", statisticsHandler.GetQuestionStatistics)
		}

		attempt := api.Group("/attempts/:id", middleware.ExtractUintParam("id", "attemptID"))
		{
			attempt.GET("", attemptHandler.GetAttempt)
			attempt.POST("/responses", attemptHandler.SubmitAnswer)
			attempt.POST("/complete", attemptHandler.CompleteAttempt)
			attempt.POST("/abandon", attemptHandler.AbandonAttempt)
			attempt.POST("/timeout", attemptHandler.TimeoutAttempt)
		}
	}

	// Тайм-ауты защищают от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited properly")
}

// ginMode переводит server.mode в режим gin
func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
