package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeBlobPurge = "blob:purge"
)

// BlobPurgePayload lists storage keys whose metadata rows are already gone.
type BlobPurgePayload struct {
	Keys   []string `json:"keys"`
	Reason string   `json:"reason"` // e.g. "document_deleted", "project_deleted"
}

func NewBlobPurgeTask(payload BlobPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBlobPurge, data, asynq.MaxRetry(10), asynq.Queue("low")), nil
}
