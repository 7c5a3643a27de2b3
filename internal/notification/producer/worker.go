package producer

import (
	"context"
	"time"

	"leavedesk/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProcessOutbox polls the outbox table and moves pending jobs to the broker.
// Delivery failures are retried with the backoff recorded on the row; the
// request path that enqueued the job is long gone either way.
func ProcessOutbox(
	ctx context.Context,
	repo notification.OutboxRepository,
	writer *kafkago.Writer,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("notification.producer")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := processPendingJobs(ctx, repo, writer, log); err != nil {
				log.Error("process outbox jobs failed", zap.Error(err))
			}
		}
	}
}

func processPendingJobs(
	ctx context.Context,
	repo notification.OutboxRepository,
	writer *kafkago.Writer,
	logger *zap.Logger,
) error {
	jobs, err := repo.ListPending(ctx, 50)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		return nil
	}

	logger.Info("processing pending outbox jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		if err := publishJob(ctx, writer, job); err != nil {
			logger.Error("publish outbox job failed",
				zap.String("outbox_id", job.ID),
				zap.String("target", job.Target),
				zap.Error(err),
			)
			_ = repo.MarkFailed(ctx, job.ID, err.Error())
			continue
		}

		if err := repo.MarkSent(ctx, job.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", job.ID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("outbox job sent",
			zap.String("outbox_id", job.ID),
			zap.String("target", job.Target),
		)
	}

	return nil
}

func publishJob(ctx context.Context, writer *kafkago.Writer, job notification.OutboxJob) error {
	msg := kafkago.Message{
		Topic: job.Target,
		Key:   []byte(job.ID),
		Value: job.Payload,
	}
	return writer.WriteMessages(ctx, msg)
}
