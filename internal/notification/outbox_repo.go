package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

type OutboxJob struct {
	ID          string
	Target      string
	Payload     []byte
	Status      string
	RetryCount  int
	NextRetryAt time.Time
}

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, job OutboxJob) error
	ListPending(ctx context.Context, limit int) ([]OutboxJob, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, job OutboxJob) error {
	query := `
        INSERT INTO notification_outbox (id, target, payload, status)
        VALUES ($1, $2, $3, $4)
    `

	exec := r.execer()
	_, err := exec.ExecContext(ctx, query, job.ID, job.Target, job.Payload, job.Status)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxJob, error) {
	query := `
SELECT
	id::text,
	target,
	payload,
	status,
	retry_count,
	COALESCE(next_retry_at, created_at)
FROM notification_outbox
WHERE status IN ($1, $2)
	AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY created_at ASC
LIMIT $3
`

	rows, err := r.db.QueryContext(ctx, query, OutboxStatusPending, OutboxStatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]OutboxJob, 0, limit)
	for rows.Next() {
		var j OutboxJob
		if err := rows.Scan(
			&j.ID,
			&j.Target,
			&j.Payload,
			&j.Status,
			&j.RetryCount,
			&j.NextRetryAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	query := `
UPDATE notification_outbox
SET
	status = $2,
	processed_at = NOW(),
	error_message = NULL,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusSent)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
UPDATE notification_outbox
SET
	status = $2,
	retry_count = retry_count + 1,
	error_message = LEFT($3, 500),
	next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusFailed, reason)
	return err
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxJob(job OutboxJob) error {
	if job.ID == "" {
		return errors.New("outbox id is required")
	}
	if job.Target == "" {
		return errors.New("outbox target is required")
	}
	if len(job.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch job.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", job.Status)
	}
}
