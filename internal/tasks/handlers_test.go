package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// failingStorage fails deletes for keys in fail
type failingStorage struct {
	*blob.MemoryStorage
	fail map[string]bool
}

func (f *failingStorage) Delete(ctx context.Context, key string) error {
	if f.fail[key] {
		return errors.New("backend unavailable")
	}
	return f.MemoryStorage.Delete(ctx, key)
}

func TestNewBlobPurgeTask(t *testing.T) {
	task, err := NewBlobPurgeTask(BlobPurgePayload{Keys: []string{"a", "b"}, Reason: "document_deleted"})
	require.NoError(t, err)

	assert.Equal(t, TypeBlobPurge, task.Type())

	var payload BlobPurgePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []string{"a", "b"}, payload.Keys)
	assert.Equal(t, "document_deleted", payload.Reason)
}

func TestHandleBlobPurge_InvalidPayload(t *testing.T) {
	handler := NewHandler(blob.NewMemoryStorage(), testLogger())

	task := asynq.NewTask(TypeBlobPurge, []byte("invalid json"))

	err := handler.HandleBlobPurge(context.Background(), task)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal payload")
}

func TestHandleBlobPurge_DeletesKeys(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryStorage()
	require.NoError(t, store.Put(ctx, "k1", strings.NewReader("one"), 3, "text/plain"))
	require.NoError(t, store.Put(ctx, "k2", strings.NewReader("two"), 3, "text/plain"))
	require.NoError(t, store.Put(ctx, "keep", strings.NewReader("three"), 5, "text/plain"))

	handler := NewHandler(store, testLogger())

	// "gone" was never stored; missing keys count as purged
	task, err := NewBlobPurgeTask(BlobPurgePayload{Keys: []string{"k1", "k2", "gone"}, Reason: "project_deleted"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleBlobPurge(ctx, task))
	assert.Equal(t, []string{"keep"}, store.Keys())
}

func TestHandleBlobPurge_ReportsFailures(t *testing.T) {
	ctx := context.Background()
	store := &failingStorage{MemoryStorage: blob.NewMemoryStorage(), fail: map[string]bool{"bad": true}}
	require.NoError(t, store.Put(ctx, "good", strings.NewReader("x"), 1, ""))

	handler := NewHandler(store, testLogger())

	task, err := NewBlobPurgeTask(BlobPurgePayload{Keys: []string{"bad", "good"}})
	require.NoError(t, err)

	err = handler.HandleBlobPurge(ctx, task)
	assert.Error(t, err)
	// The good key is still purged so a retry only has the failed one left to do
	assert.Empty(t, store.Keys())
}

func TestRegisterHandlers(t *testing.T) {
	mux := asynq.NewServeMux()
	NewHandler(blob.NewMemoryStorage(), testLogger()).RegisterHandlers(mux)

	h, pattern := mux.Handler(asynq.NewTask(TypeBlobPurge, nil))
	assert.NotNil(t, h)
	assert.Equal(t, TypeBlobPurge, pattern)
}

type recordingClient struct {
	tasks []*asynq.Task
	err   error
}

func (c *recordingClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestEnqueuer_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues purge task", func(t *testing.T) {
		client := &recordingClient{}
		enq := NewEnqueuer(client)

		require.NoError(t, enq.Purge(ctx, []string{"projects/1/2024/01/x"}, "document_deleted"))
		require.Len(t, client.tasks, 1)
		assert.Equal(t, TypeBlobPurge, client.tasks[0].Type())

		var payload BlobPurgePayload
		require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
		assert.Equal(t, []string{"projects/1/2024/01/x"}, payload.Keys)
	})

	t.Run("no keys is a no-op", func(t *testing.T) {
		client := &recordingClient{}
		require.NoError(t, NewEnqueuer(client).Purge(ctx, nil, "project_deleted"))
		assert.Empty(t, client.tasks)
	})

	t.Run("client error is returned", func(t *testing.T) {
		client := &recordingClient{err: errors.New("redis down")}
		err := NewEnqueuer(client).Purge(ctx, []string{"k"}, "document_deleted")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis down")
	})
}
