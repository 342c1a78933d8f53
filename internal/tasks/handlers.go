package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/go-projects/internal/blob"
)

type Handler struct {
	storage blob.Storage
	logger  *slog.Logger
}

func NewHandler(storage blob.Storage, logger *slog.Logger) *Handler {
	return &Handler{
		storage: storage,
		logger:  logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBlobPurge, h.HandleBlobPurge)
}

// HandleBlobPurge deletes every key in the payload. Keys already gone count
// as purged; any other failure fails the task so asynq retries it.
func (h *Handler) HandleBlobPurge(ctx context.Context, t *asynq.Task) error {
	var payload BlobPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("purging blobs", "keys", len(payload.Keys), "reason", payload.Reason)

	var errs []error
	purged := 0
	for _, key := range payload.Keys {
		if err := h.storage.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			h.logger.Error("failed to purge blob", "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		purged++
	}

	h.logger.Info("completed blob purge", "purged", purged, "failed", len(errs))
	return errors.Join(errs...)
}
