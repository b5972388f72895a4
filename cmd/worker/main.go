package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mediseen/teleconsult-api/config"
	"github.com/mediseen/teleconsult-api/internal/email"
	"github.com/mediseen/teleconsult-api/internal/repository/postgres"
	"github.com/mediseen/teleconsult-api/pkg/logger"
	"github.com/mediseen/teleconsult-api/pkg/messaging/redis"
	"github.com/mediseen/teleconsult-api/pkg/metrics"
	"github.com/mediseen/teleconsult-api/pkg/worker"
)

// workerEnv holds the knobs specific to the worker process; everything else
// comes from the shared config file.
type workerEnv struct {
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	RetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"1s"`
	HealthPort    string        `envconfig:"WORKER_HEALTH_PORT" default:"8081"`
}

func main() {
	log := logger.NewLogger(&logger.Config{
		Level:   logger.InfoLevel,
		Service: "teleconsult-worker",
	})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err, "failed to process environment")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("teleconsult", "worker")

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		postgres.NewPatientRepository(db),
		broker,
		email.NewService(cfg.Email, log),
		worker.OutboxProcessorConfig{
			BatchSize:     env.BatchSize,
			PollInterval:  env.PollInterval,
			RetryAttempts: env.RetryAttempts,
			RetryDelay:    env.RetryDelay,
		},
		log,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startHealthServer(env.HealthPort, log)
	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down worker")
	cancel()
}

func startHealthServer(port string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Error(err, "health check server failed")
		}
	}()
}
