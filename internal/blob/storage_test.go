package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hugh/go-projects/pkg/config"
	"github.com/hugh/go-projects/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a/b", strings.NewReader("hello"), 5, "text/plain"))

		rc, err := store.Get(ctx, "a/b")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), readAll(t, rc))
		assert.Equal(t, []string{"a/b"}, store.Keys())
	})

	t.Run("size mismatch rejected", func(t *testing.T) {
		err := store.Put(ctx, "short", strings.NewReader("abc"), 10, "text/plain")
		assert.Error(t, err)
	})

	t.Run("unknown size accepted", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "unsized", strings.NewReader("abc"), -1, ""))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "a/b"))
		require.NoError(t, store.Delete(ctx, "a/b"))
		_, err := store.Get(ctx, "a/b")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEncryptedStorage(t *testing.T) {
	ctx := context.Background()
	enc, err := crypto.NewEncryptor("")
	require.NoError(t, err)

	inner := NewMemoryStorage()
	store := NewEncrypted(inner, enc)

	plaintext := []byte("meeting notes: ship on friday")
	require.NoError(t, store.Put(ctx, "doc", bytes.NewReader(plaintext), int64(len(plaintext)), "text/plain"))

	raw, ok := inner.Raw("doc")
	require.True(t, ok)
	assert.NotContains(t, string(raw), "ship on friday")

	rc, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, plaintext, readAll(t, rc))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "doc"))
	assert.Empty(t, inner.Keys())
}

type fakeS3 struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.lastPut = in
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3StorageWithClient(client, "docs", "tenant")

	t.Run("put applies prefix and content length", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "projects/1/x", strings.NewReader("payload"), -1, "text/plain"))

		assert.Equal(t, "tenant/projects/1/x", aws.ToString(client.lastPut.Key))
		assert.Equal(t, int64(7), aws.ToInt64(client.lastPut.ContentLength))
		assert.Equal(t, "text/plain", aws.ToString(client.lastPut.ContentType))
		assert.Contains(t, client.objects, "docs/tenant/projects/1/x")
	})

	t.Run("get round trip", func(t *testing.T) {
		rc, err := store.Get(ctx, "projects/1/x")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), readAll(t, rc))
	})

	t.Run("missing key maps to ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "projects/1/missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "projects/1/x"))
		assert.Empty(t, client.objects)
	})
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := New(ctx, config.BlobConfig{Driver: DriverMemory}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, store)

	enc, err := crypto.NewEncryptor("")
	require.NoError(t, err)
	store, err = New(ctx, config.BlobConfig{Driver: DriverMemory}, enc, logger)
	require.NoError(t, err)
	assert.IsType(t, &Encrypted{}, store)
	assert.NoError(t, Close(store))

	_, err = New(ctx, config.BlobConfig{Driver: "floppy"}, nil, logger)
	assert.Error(t, err)
}

func TestShared(t *testing.T) {
	assert.True(t, Shared(DriverS3))
	assert.True(t, Shared(DriverGCS))
	assert.False(t, Shared(DriverMemory))
	assert.False(t, Shared(""))
	assert.False(t, Shared("floppy"))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "k", objectKey("", "k"))
	assert.Equal(t, "p/k", objectKey("p", "k"))
	assert.Equal(t, "p/k", objectKey("p/", "k"))
}
