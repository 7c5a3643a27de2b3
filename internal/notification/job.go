// Package notification is the outbound job boundary. The core only depends
// on the Publisher contract: hand over a job descriptor and move on. Whether
// the job is delivered is invisible to request handling; a notification
// failure never blocks or reverses a committed mutation.
package notification

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Job is a fire-and-forget work item: Target names the destination topic,
// Payload is an opaque JSON document.
type Job struct {
	Target  string
	Payload []byte
}

type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// OutboxPublisher persists jobs to the outbox table; a separate worker moves
// them to the broker. WithTx makes the enqueue atomic with the caller's
// database transaction.
type OutboxPublisher struct {
	repo OutboxRepository
}

func NewOutboxPublisher(repo OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{repo: repo}
}

func (p *OutboxPublisher) WithTx(tx *sql.Tx) *OutboxPublisher {
	return &OutboxPublisher{repo: p.repo.WithTx(tx)}
}

func (p *OutboxPublisher) Publish(ctx context.Context, job Job) error {
	row := OutboxJob{
		ID:      uuid.NewString(),
		Target:  job.Target,
		Payload: job.Payload,
		Status:  OutboxStatusPending,
	}
	if err := ValidateOutboxJob(row); err != nil {
		return err
	}
	return p.repo.Create(ctx, row)
}
