package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/infrastructure/postgres"
	"github.com/invorya/ledger-api/internal/jobs"
	"github.com/invorya/ledger-api/pkg/config"
	"github.com/invorya/ledger-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().Str("app", cfg.App.Name).Msg("iniciando worker")

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	reservationUC := ledger.NewReservationUseCase(txRunner, itemRepo, warehouseRepo, reservationRepo)

	expiryJob := jobs.NewReservationExpiryJob(reservationUC, log)
	expiryTask, err := jobs.NewReservationExpireTask(cfg.Worker.ExpiryBatchLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("construir tarea de expiración")
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReservationsExpire, Handler: expiryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Worker.ExpiryCronSpec, Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("iniciar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}

	log.Info().Msg("worker detenido")
}
