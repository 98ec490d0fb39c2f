package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solvit/config"
	"solvit/cron"
	"solvit/database"
	providerRepo "solvit/database/repository/provider"
	"solvit/handlers"
	"solvit/middleware"
	"solvit/routes"
	"solvit/services/events"
	"solvit/services/schedule"
	"solvit/services/tasks"
	"solvit/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := utils.CheckJWTSecret(); err != nil {
		logger.Fatal("main: refusing to start", zap.Error(err))
	}
	loc := config.Location()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	checks := map[string]utils.HealthCheck{}

	// repositories.
	var provRepo providerRepo.ProviderRepository
	switch config.AppConfig.StoreBackend {
	case "memory":
		logger.Warn("Using the in-memory provider store; data is lost on restart")
		provRepo = providerRepo.NewMemoryProviderRepo()
	default:
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		mongoRepo := providerRepo.NewMongoProviderRepo(database.Collection("providers"), logger, loc)
		if err := mongoRepo.EnsureIndexes(rootCtx); err != nil {
			logger.Error("main: failed to ensure provider indexes", zap.Error(err))
		}
		provRepo = mongoRepo
		checks["mongo"] = mongoRepo.Ping
	}

	// booking lock: Redis when reachable, in-process otherwise.
	var locker schedule.BookingLocker
	redisReady := false
	if config.AppConfig.RedisAddr != "" {
		lockClient, err := utils.InitLockClient()
		if err != nil {
			logger.Warn("main: Redis unavailable, using in-process booking locks", zap.Error(err))
		} else {
			locker = schedule.NewRedisLocker(lockClient, config.AppConfig.BookingLockTTL, logger)
			checks["redis"] = func(ctx context.Context) error { return lockClient.Ping(ctx).Err() }
			redisReady = true
		}
	}
	if locker == nil {
		locker = schedule.NewLocalLocker()
	}

	publisher := events.NewPublisher(config.AppConfig.KafkaBrokers, config.AppConfig.KafkaTopic, logger)
	defer publisher.Close()

	// services.
	scheduleService, err := schedule.NewDefaultScheduleService(provRepo, locker, publisher, logger, schedule.Options{
		RejectOverlaps:        config.AppConfig.RejectOverlappingSlots,
		MaxRetries:            config.AppConfig.BookingMaxRetries,
		DefaultBookingMinutes: config.AppConfig.DefaultBookingMinutes,
		Location:              loc,
	})
	if err != nil {
		logger.Fatal("main: failed to build schedule service", zap.Error(err))
	}

	// background pruning of elapsed appointments.
	var worker *cron.PruneWorker
	if redisReady {
		queue := cron.NewQueueClient()
		pruner := &tasks.Pruner{
			Providers: provRepo,
			Schedules: scheduleService,
			Queue:     queue,
			Retention: time.Duration(config.AppConfig.AcceptedSlotRetentionHours) * time.Hour,
			Logger:    logger.Named("prune"),
			Now:       time.Now,
		}
		worker, err = cron.StartPruneWorker(pruner, queue, logger.Named("prune"))
		if err != nil {
			logger.Error("main: prune worker disabled", zap.Error(err))
		}
	}

	utils.StartHealthMonitor(rootCtx, 60*time.Second, checks)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewScheduleHandler(scheduleService),
		handlers.NewBookingHandler(scheduleService),
		handlers.HealthHandler,
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to close MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
