package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskClient is the part of *asynq.Client used to schedule work.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer hands blob deletion to the worker instead of doing it inline.
type Enqueuer struct {
	client TaskClient
}

func NewEnqueuer(client TaskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) Purge(ctx context.Context, keys []string, reason string) error {
	if len(keys) == 0 {
		return nil
	}

	task, err := NewBlobPurgeTask(BlobPurgePayload{Keys: keys, Reason: reason})
	if err != nil {
		return fmt.Errorf("creating purge task: %w", err)
	}

	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueueing purge task: %w", err)
	}
	return nil
}
