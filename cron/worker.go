package cron

import (
	"fmt"
	"time"

	"solvit/config"
	"solvit/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PruneWorker runs the prune task handlers and the periodic sweep.
type PruneWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *asynq.Client
	logger    *zap.Logger
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the client used to enqueue prune tasks.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpt())
}

// NewMux registers the prune handlers.
func NewMux(p *tasks.Pruner) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePruneSweep, p.HandleSweep)
	mux.HandleFunc(tasks.TypePruneAccepted, p.HandlePrune)
	return mux
}

// StartPruneWorker starts the asynq server and registers the sweep on
// PRUNE_CRON. Start failures are retried with backoff in the background.
func StartPruneWorker(p *tasks.Pruner, client *asynq.Client, logger *zap.Logger) (*PruneWorker, error) {
	srv := asynq.NewServer(redisOpt(), asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
		Logger:      logger.Sugar(),
	})

	scheduler := asynq.NewScheduler(redisOpt(), &asynq.SchedulerOpts{Location: config.Location(), Logger: logger.Sugar()})
	entryID, err := scheduler.Register(config.AppConfig.PruneCron, tasks.NewPruneSweepTask(), asynq.Unique(time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to register prune sweep %q: %w", config.AppConfig.PruneCron, err)
	}
	logger.Info("Registered prune sweep", zap.String("cron", config.AppConfig.PruneCron), zap.String("entryID", entryID))

	w := &PruneWorker{server: srv, scheduler: scheduler, client: client, logger: logger}
	mux := NewMux(p)

	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Start(mux)
			if err == nil {
				break
			}
			logger.Error("Prune worker failed to start", zap.Int("attempt", attempt), zap.Error(err))
			if attempt == maxAttempts {
				logger.Error("Prune worker giving up; elapsed appointments will not be pruned")
				return
			}
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		if err := scheduler.Start(); err != nil {
			logger.Error("Prune scheduler failed to start", zap.Error(err))
		}
	}()
	return w, nil
}

// Shutdown stops the scheduler and drains in-flight tasks.
func (w *PruneWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	if err := w.client.Close(); err != nil {
		w.logger.Warn("Failed to close queue client", zap.Error(err))
	}
}
