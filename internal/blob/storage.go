// Package blob stores document content. Keys are opaque strings chosen by the
// caller; backends may prepend a configured prefix.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/hugh/go-projects/pkg/config"
	"github.com/hugh/go-projects/pkg/crypto"
)

var ErrNotFound = errors.New("blob not found")

type Storage interface {
	// Put stores r under key. size is -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns ErrNotFound for a missing key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent: deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}

const (
	DriverS3     = "s3"
	DriverGCS    = "gcs"
	DriverMemory = "memory"
)

// Shared reports whether driver stores blobs outside the process, where a
// separate worker can reach them. Unknown and empty drivers are not shared.
func Shared(driver string) bool {
	return driver == DriverS3 || driver == DriverGCS
}

// New builds the configured backend, wrapped with encryption when enc is
// non-nil.
func New(ctx context.Context, cfg config.BlobConfig, enc *crypto.Encryptor, logger *slog.Logger) (Storage, error) {
	var (
		store Storage
		err   error
	)

	switch cfg.Driver {
	case DriverS3:
		store, err = NewS3Storage(ctx, cfg)
	case DriverGCS:
		store, err = NewGCSStorage(ctx, cfg)
	case DriverMemory, "":
		logger.Warn("using in-memory blob storage - documents will be lost on restart")
		store = NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("blob storage ready", "driver", cfg.Driver, "bucket", cfg.Bucket, "encrypted", enc != nil)

	if enc != nil {
		return NewEncrypted(store, enc), nil
	}
	return store, nil
}

// Close releases backend resources if the storage holds any.
func Close(s Storage) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func objectKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
