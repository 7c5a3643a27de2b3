package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leavedesk/internal/accrual"
	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/notification"
	"leavedesk/internal/notification/producer"
	"leavedesk/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker hosts the two background loops: the outbox producer that drains
// queued jobs to the broker, and the daily accrual sweep.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := notification.NewOutboxRepository(sqlDB)

	// The sweep only invalidates; it never patches collections, so a syncer
	// with a bare store is enough here.
	store := cache.NewStore(rdb)
	syncer := cachesync.NewSyncer(store, nil, nil, nil)
	accrualService := accrual.NewService(sqlDB, accrual.NewRepository(gormDB), syncer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutbox(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runAccrualLoop(ctx, accrualService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// runAccrualLoop sweeps once at startup, then daily. The sweep itself is
// idempotent per period, so the schedule only needs to be "at least once a
// period", not exact.
func runAccrualLoop(ctx context.Context, svc *accrual.Service, logger *zap.Logger) {
	log := logger.Named("accrual.loop")

	if err := svc.RunSweep(ctx, time.Now().UTC()); err != nil {
		log.Error("startup accrual sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("accrual loop stopped")
			return
		case <-ticker.C:
			if err := svc.RunSweep(ctx, time.Now().UTC()); err != nil {
				log.Error("accrual sweep failed", zap.Error(err))
			}
		}
	}
}
