package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hugh/go-projects/pkg/crypto"
)

// Encrypted seals content with age before handing it to the wrapped storage.
type Encrypted struct {
	next Storage
	enc  *crypto.Encryptor
}

func NewEncrypted(next Storage, enc *crypto.Encryptor) *Encrypted {
	return &Encrypted{next: next, enc: enc}
}

func (e *Encrypted) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var sealed bytes.Buffer

	w, err := e.enc.EncryptTo(&sealed)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("encrypting blob %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encrypting blob %s: %w", key, err)
	}

	return e.next.Put(ctx, key, bytes.NewReader(sealed.Bytes()), int64(sealed.Len()), "application/octet-stream")
}

func (e *Encrypted) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := e.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	plain, err := e.enc.DecryptFrom(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decrypting blob %s: %w", key, err)
	}

	return struct {
		io.Reader
		io.Closer
	}{plain, rc}, nil
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.next.Delete(ctx, key)
}

func (e *Encrypted) Close() error {
	return Close(e.next)
}
