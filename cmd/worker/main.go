package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/db"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/notifications"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/observability"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/queue/redisclient"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/queue/worker"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	queueClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer queueClient.Close()

	var waker worker.Waker
	if err := queueClient.Ping(ctx); err != nil {
		log.Warn("queue unreachable, polling only", "err", err)
	} else {
		waker = queueClient
	}

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	notifier := notifications.NewLogNotifier()

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:     workerID,
		PollInterval: 2 * time.Second,
		LockTTL:      5 * time.Minute,
	}, jobsRepo, notifier, waker, log, prom)

	healthPort := 8081
	if v := os.Getenv("WORKER_HEALTH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			healthPort = n
		}
	}

	healthSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(healthPort),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	sctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("worker shutdown complete")
}
