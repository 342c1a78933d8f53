package documents

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hugh/go-projects/internal/blob"
)

// Purger removes blob content whose metadata rows have been deleted.
type Purger interface {
	Purge(ctx context.Context, keys []string, reason string) error
}

// InlinePurger deletes blobs synchronously. Used when no task queue is
// configured.
type InlinePurger struct {
	storage blob.Storage
	logger  *slog.Logger
}

func NewInlinePurger(storage blob.Storage, logger *slog.Logger) *InlinePurger {
	return &InlinePurger{storage: storage, logger: logger}
}

func (p *InlinePurger) Purge(ctx context.Context, keys []string, reason string) error {
	var errs []error
	for _, key := range keys {
		if err := p.storage.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			p.logger.Error("failed to purge blob", "key", key, "reason", reason, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
